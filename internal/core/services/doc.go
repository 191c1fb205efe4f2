// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Every driving operation returns a domain.Result. Errors from adapters are
// translated into a domain.Failure here and never escape to callers.
//
// Services:
//   - IndexManager: chunk, embed and store documents; nearest-neighbour search
//   - LazyIndex: builds the IndexManager on first use
//   - FileIndexer: index a file read through the sandbox, after text extraction
//   - FileService: list and read sandboxed files
//   - QueryService: read-only SQL
//   - SettingsService: config file, environment and defaults
package services
