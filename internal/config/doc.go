// Package config loads, normalizes, and validates marionette configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML files. An empty rig path selects the built-in rig and an empty
// analysis path selects generated signals, so the tools run without any
// files on disk.
package config
