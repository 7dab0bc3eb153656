// Package textutil provides small text helpers for filesystem-safe naming of
// run workspaces, intermediate segment files, and outputs.
package textutil
