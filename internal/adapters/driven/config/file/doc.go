// Package file provides the TOML-backed configuration store.
//
// The file lives at ~/.docindex/config.toml unless another directory is
// given. Keys are addressed in dot-notation ("storage.backend") and
// written back as nested tables.
package file
