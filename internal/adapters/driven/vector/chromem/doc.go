// Package chromem implements the vector store port on an embedded
// chromem-go collection.
//
// It is the default provider when no hosted index is configured: documents
// persist under a local directory and are embedded in process, by default
// with a deterministic feature-hashing embedder that needs no model. An
// Ollama embedder can be selected for semantic quality closer to the hosted
// service.
package chromem
