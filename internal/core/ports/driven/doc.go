// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the index to function:
//
//   - EmbeddingService: Maps text to vectors. A load failure is fatal.
//   - IndexStore: Durable vector record storage and nearest-neighbour query
//   - PostProcessorPipeline: Splits documents into chunks
//   - ConfigStore: Application configuration
//
// # Collaborator Interfaces
//
// These serve the tool layer around the index and may be nil:
//
//   - FileAccess: Sandboxed reads from the data directory
//   - QueryRunner: Read-only SQL over a configured database
//   - NormaliserRegistry: Text extraction from markup before indexing
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or postprocessor package
package driven
