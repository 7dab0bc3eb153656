// Package encoder probes the host once per run and picks the video encoder
// profile the external tool should use for final output.
package encoder
