// Package filtergraph models the external tool's filter DSL as typed nodes
// and chains instead of ad hoc string concatenation.
//
// Every builder in the pipeline (reframe, motion, overlay, fallback
// composite) produces Chain values that are serialized here, in one place,
// and all user-supplied text is routed through a single Escape function so
// structurally significant characters can never leak into the grammar.
package filtergraph
