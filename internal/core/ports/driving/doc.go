// Package driving defines interfaces that external actors (CLI, MCP, HTTP)
// use to interact with core services. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// Every operation returns a domain.Result so adapters can report failures
// to a tool-calling agent as data rather than as errors.
//
// Implementations of these interfaces live in internal/core/services.
package driving
