package chromem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorStore    = (*Store)(nil)
	_ driven.VectorLister   = (*Store)(nil)
	_ driven.VectorResetter = (*Store)(nil)
)

// Default configuration values.
const (
	DefaultCollection  = "portfolio_chunks"
	DefaultConcurrency = 4
)

// Embedders.
const (
	EmbedderHash   = "hash"
	EmbedderOllama = "ollama"
)

// Config holds configuration for the local vector store.
type Config struct {
	// Path is the persistence directory. Empty keeps the index in memory.
	Path string

	// Collection is the collection name (default: portfolio_chunks).
	Collection string

	// Dimension is the embedding size reported by Info and used by the
	// hash embedder (default: 1024).
	Dimension int

	// Embedder selects hash (default) or ollama.
	Embedder string

	// OllamaModel and OllamaURL configure the ollama embedder.
	OllamaModel string
	OllamaURL   string
}

// Store is a local vector store backed by chromem-go. Like the hosted
// service it accepts raw text and embeds it itself.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	dimension  int
	embed      chromem.EmbeddingFunc
}

// NewStore opens or creates the collection.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = domain.DefaultExpectedDimension
	}

	var embed chromem.EmbeddingFunc
	switch cfg.Embedder {
	case "", EmbedderHash:
		embed = HashEmbedding(cfg.Dimension)
	case EmbedderOllama:
		if cfg.OllamaModel == "" {
			return nil, errors.New("chromem: ollama embedder requires a model")
		}
		embed = chromem.NewEmbeddingFuncOllama(cfg.OllamaModel, cfg.OllamaURL)
	default:
		return nil, fmt.Errorf("chromem: embedder %q: %w", cfg.Embedder, domain.ErrUnsupportedProvider)
	}

	var (
		db  *chromem.DB
		err error
	)
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("opening vector db: %w", err)
		}
	}

	s := &Store{db: db, name: cfg.Collection, dimension: cfg.Dimension, embed: embed}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	collection, err := s.db.GetOrCreateCollection(s.name, map[string]string{"hnsw:space": "cosine"}, s.embed)
	if err != nil {
		return fmt.Errorf("opening collection %s: %w", s.name, err)
	}
	s.collection = collection
	return nil
}

// Upsert embeds and stores a batch. Existing IDs are replaced.
func (s *Store) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(vectors))
	for i, v := range vectors {
		meta, err := flattenMetadata(v.Metadata)
		if err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		docs[i] = chromem.Document{ID: v.ID, Content: v.Data, Metadata: meta}
	}
	if err := s.collection.AddDocuments(ctx, docs, DefaultConcurrency); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

// Query embeds the text and returns the nearest documents.
func (s *Store) Query(ctx context.Context, q domain.VectorQuery) ([]domain.VectorHit, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	// chromem rejects requests for more results than documents.
	topK = min(topK, s.collection.Count())
	if topK == 0 {
		return []domain.VectorHit{}, nil
	}

	var where map[string]string
	if q.Filter != nil {
		where = map[string]string{q.Filter.Field: q.Filter.Value}
	}

	results, err := s.collection.Query(ctx, q.Text, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	hits := make([]domain.VectorHit, 0, len(results))
	for _, r := range results {
		hit := domain.VectorHit{ID: r.ID, Score: float64(r.Similarity)}
		if q.IncludeMetadata {
			hit.Metadata = make(map[string]any, len(r.Metadata))
			for k, v := range r.Metadata {
				hit.Metadata[k] = v
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Info reports the configured dimension and the document count.
func (s *Store) Info(_ context.Context) (domain.VectorInfo, error) {
	return domain.VectorInfo{
		Dimension:          s.dimension,
		VectorCount:        s.collection.Count(),
		SimilarityFunction: "COSINE",
	}, nil
}

// ListIDs returns every document ID, sorted. The collection has no listing
// call, so this asks for as many nearest neighbours as there are documents.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	n := s.collection.Count()
	if n == 0 {
		return []string{}, nil
	}
	results, err := s.collection.Query(ctx, "*", n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing collection: %w", err)
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids, nil
}

// Reset drops and recreates the collection.
func (s *Store) Reset(_ context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.name, err)
	}
	return s.open()
}

// flattenMetadata converts metadata to the string map chromem stores.
// Scalars are formatted; lists and objects are JSON-encoded.
func flattenMetadata(meta map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch v.(type) {
		case nil, string, int, int64, float64, bool:
			out[k] = domain.MetadataString(v)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encoding metadata %s: %w", k, err)
			}
			out[k] = string(data)
		}
	}
	return out, nil
}
