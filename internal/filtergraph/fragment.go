package filtergraph

import "strings"

// Arg is a single parameter on a filter node. Positional arguments have an
// empty Key. Quoted arguments are wrapped in single quotes when serialized,
// which the filter grammar requires for values containing commas (per-frame
// expressions, enable windows).
type Arg struct {
	Key    string
	Value  string
	Quoted bool
}

// Param builds a keyed argument.
func Param(key, value string) Arg {
	return Arg{Key: key, Value: value}
}

// Positional builds an unkeyed argument.
func Positional(value string) Arg {
	return Arg{Value: value}
}

// Expr builds a keyed argument whose value is an expression that must be
// quoted in the serialized graph.
func Expr(key, value string) Arg {
	return Arg{Key: key, Value: value, Quoted: true}
}

// Node is one filter invocation: a name plus ordered arguments.
type Node struct {
	Name string
	Args []Arg
}

// NewNode constructs a filter node.
func NewNode(name string, args ...Arg) Node {
	return Node{Name: name, Args: args}
}

// String serializes the node into the external tool's filter grammar.
func (n Node) String() string {
	var b strings.Builder
	b.WriteString(n.Name)
	for i, arg := range n.Args {
		if i == 0 {
			b.WriteByte('=')
		} else {
			b.WriteByte(':')
		}
		if arg.Key != "" {
			b.WriteString(arg.Key)
			b.WriteByte('=')
		}
		if arg.Quoted {
			b.WriteByte('\'')
			b.WriteString(arg.Value)
			b.WriteByte('\'')
		} else {
			b.WriteString(arg.Value)
		}
	}
	return b.String()
}

// Chain is an ordered sequence of filter nodes applied in series.
type Chain struct {
	nodes []Node
}

// NewChain constructs a chain from the given nodes.
func NewChain(nodes ...Node) Chain {
	return Chain{nodes: append([]Node(nil), nodes...)}
}

// Append returns a chain extended with the given nodes.
func (c Chain) Append(nodes ...Node) Chain {
	combined := make([]Node, 0, len(c.nodes)+len(nodes))
	combined = append(combined, c.nodes...)
	combined = append(combined, nodes...)
	return Chain{nodes: combined}
}

// Concat returns a chain extended with every node of other.
func (c Chain) Concat(other Chain) Chain {
	return c.Append(other.nodes...)
}

// Empty reports whether the chain has no nodes.
func (c Chain) Empty() bool {
	return len(c.nodes) == 0
}

// Len reports the number of nodes in the chain.
func (c Chain) Len() int {
	return len(c.nodes)
}

// String serializes the chain, joining nodes with commas.
func (c Chain) String() string {
	parts := make([]string, 0, len(c.nodes))
	for _, node := range c.nodes {
		parts = append(parts, node.String())
	}
	return strings.Join(parts, ",")
}

// textEscaper handles characters that are structurally significant in the
// filter grammar. Backslash must be listed first so later escapes are not
// doubled.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`:`, `\:`,
	`,`, `\,`,
	`;`, `\;`,
	`[`, `\[`,
	`]`, `\]`,
	`=`, `\=`,
	`%`, `\%`,
)

// Escape prepares user-supplied text for embedding in a filter argument.
// All text rendered into the graph must pass through this function exactly
// once.
func Escape(text string) string {
	return textEscaper.Replace(text)
}
