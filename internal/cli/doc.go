// Package cli provides the wikitrans command tree. Without a subcommand the
// desktop editor is launched; the subcommands run headless edit sessions
// against the same backend and local journal.
package cli
