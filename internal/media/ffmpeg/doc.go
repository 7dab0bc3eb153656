// Package ffmpeg wraps invocation of the external processing tool: argument
// list in, exit status and diagnostic stream out. The tool itself is an
// opaque collaborator; everything this repository knows about it is the
// command grammar built by the filtergraph, reframe, motion, and overlay
// packages.
package ffmpeg
