package store

import (
	"context"
	"fmt"

	"call-copilot/internal/models"
	"call-copilot/internal/segmenter"
)

// Embedder turns text into a vector. Satisfied by langchaingo's
// embeddings.Embedder implementations and by test fakes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is the retrieval contract the orchestrator depends on.
// Implementations are polymorphic over storage backends; how matches
// are found is opaque to callers.
type Index interface {
	// Upsert atomically replaces every chunk stored for callID with the
	// given pieces, indexed sequentially from 0. Safe to call
	// repeatedly with identical input.
	Upsert(ctx context.Context, callID, callTitle string, pieces []segmenter.Piece) (string, error)

	// ListCallIDs returns the sorted, deduplicated call IDs.
	ListCallIDs(ctx context.Context) ([]string, error)

	// Search returns up to topK results ordered by ascending cosine
	// distance. callID "" searches all calls; no match returns an
	// empty slice, never an error.
	Search(ctx context.Context, query, callID string, topK int) ([]models.SearchResult, error)

	// GetAllChunks returns every chunk of one call ordered by
	// ChunkIndex ascending.
	GetAllChunks(ctx context.Context, callID string) ([]models.Chunk, error)
}

// ChunkID derives the globally unique chunk ID from its call and
// position. Any persisted representation must round-trip this scheme.
func ChunkID(callID string, index int) string {
	return fmt.Sprintf("%s__%d", callID, index)
}
