// Package main hosts the marionette CLI entrypoint and command graph.
//
// The Cobra command tree loads a rig description and an analysis file,
// wires them into a Binder, and then either prints the result (inspect,
// simulate, validate) or opens the interactive viewer (view). Configuration
// resolution and logger construction live in the command context so
// subcommands only deal with presentation.
package main
