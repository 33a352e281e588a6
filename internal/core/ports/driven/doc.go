// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Fetches raw documents from the input directory
//   - Normaliser: Turns a raw document into a Post
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - EmbeddingService: Generates vector embeddings
//   - Clusterer: Assigns embeddings to topical clusters (k-means)
//   - Projector: Reduces embeddings to 2D coordinates (t-SNE)
//   - GalaxyWriter: Persists the finished dataset
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingCache: Reuses vectors across runs. Without it every text is embedded.
//   - CorpusPreparer: Implemented by embedding services that fit on the corpus first.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
