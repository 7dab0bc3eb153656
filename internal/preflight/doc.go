// Package preflight provides readiness checks run before a montage build:
// required binaries on PATH, workspace access, free disk, and source files.
//
// The assembler calls RunAll before touching any source so a doomed run
// fails in milliseconds instead of mid-extraction. The CLI "doctor" command
// uses the same checks to display host health.
package preflight
