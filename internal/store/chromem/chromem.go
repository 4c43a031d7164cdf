// Package chromem backs the retrieval index with the embedded
// chromem-go vector database. Documents carry precomputed embeddings
// from the injected embedder; similarity search uses cosine distance
// (distance = 1 - similarity).
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"call-copilot/internal/config"
	"call-copilot/internal/helper"
	"call-copilot/internal/models"
	"call-copilot/internal/segmenter"
	"call-copilot/internal/store"
)

const manifestFile = "calls.json"

// callMeta is the per-call bookkeeping chromem-go cannot answer itself
// (it has no metadata enumeration API).
type callMeta struct {
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

// Store implements store.Index over a chromem-go collection plus a
// JSON manifest of known calls.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   store.Embedder

	mu           sync.Mutex
	calls        map[string]callMeta
	manifestPath string // empty for in-memory stores
}

// New opens (or creates) the database and collection described by cfg.
func New(cfg config.ChromemConfig, embedder store.Embedder) (*Store, error) {
	var db *chromem.DB
	var manifestPath string
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		if err := helper.CreateFolder(cfg.Path); err != nil {
			return nil, fmt.Errorf("create db folder: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
		manifestPath = filepath.Join(cfg.Path, manifestFile)
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get/create collection: %w", err)
	}

	s := &Store{
		db:           db,
		collection:   collection,
		embedder:     embedder,
		calls:        map[string]callMeta{},
		manifestPath: manifestPath,
	}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadManifest() error {
	if s.manifestPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &s.calls); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	return nil
}

// saveManifest is called with s.mu held.
func (s *Store) saveManifest() error {
	if s.manifestPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.calls, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.manifestPath, data, 0o644)
}

// Upsert deletes every chunk stored for callID, then inserts the new
// set with sequential indexes starting at 0.
func (s *Store) Upsert(ctx context.Context, callID, callTitle string, pieces []segmenter.Piece) (string, error) {
	docs := make([]chromem.Document, 0, len(pieces))
	for i, p := range pieces {
		vec, err := s.embedder.EmbedQuery(ctx, p.Text)
		if err != nil {
			return "", fmt.Errorf("embed chunk %d: %w", i, err)
		}
		docs = append(docs, chromem.Document{
			ID:      store.ChunkID(callID, i),
			Content: p.Text,
			Metadata: map[string]string{
				"call_id":     callID,
				"call_title":  callTitle,
				"chunk_index": strconv.Itoa(i),
				"start_char":  strconv.Itoa(p.Start),
				"end_char":    strconv.Itoa(p.End),
			},
			Embedding: vec,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.calls[callID]; known {
		if err := s.collection.Delete(ctx, map[string]string{"call_id": callID}, nil); err != nil {
			return "", fmt.Errorf("delete previous chunks for %s: %w", callID, err)
		}
	}
	if len(docs) > 0 {
		if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return "", fmt.Errorf("add chunks for %s: %w", callID, err)
		}
		s.calls[callID] = callMeta{Title: callTitle, Chunks: len(docs)}
	} else {
		delete(s.calls, callID)
	}
	if err := s.saveManifest(); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}
	log.Debug().Str("call_id", callID).Int("chunks", len(docs)).Msg("upserted call")
	return callID, nil
}

func (s *Store) ListCallIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.calls))
	for id := range s.calls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Search(ctx context.Context, query, callID string, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	// chromem-go errors when asked for more results than stored, so
	// clamp to the number of chunks the filter can match.
	s.mu.Lock()
	available := 0
	if callID != "" {
		available = s.calls[callID].Chunks
	} else {
		for _, meta := range s.calls {
			available += meta.Chunks
		}
	}
	s.mu.Unlock()
	if available == 0 {
		return nil, nil
	}
	if topK > available {
		topK = available
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	opts := chromem.QueryOptions{
		QueryEmbedding: vec,
		NResults:       topK,
	}
	if callID != "" {
		opts.Where = map[string]string{"call_id": callID}
	}
	results, err := s.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		chunk, err := chunkFromDoc(r.ID, r.Content, r.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, models.SearchResult{
			Chunk:    chunk,
			Distance: 1 - float64(r.Similarity),
		})
	}
	return out, nil
}

func (s *Store) GetAllChunks(ctx context.Context, callID string) ([]models.Chunk, error) {
	s.mu.Lock()
	meta, ok := s.calls[callID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	chunks := make([]models.Chunk, 0, meta.Chunks)
	for i := 0; i < meta.Chunks; i++ {
		doc, err := s.collection.GetByID(ctx, store.ChunkID(callID, i))
		if err != nil {
			return nil, fmt.Errorf("get chunk %d of %s: %w", i, callID, err)
		}
		chunk, err := chunkFromDoc(doc.ID, doc.Content, doc.Metadata)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func chunkFromDoc(id, content string, metadata map[string]string) (models.Chunk, error) {
	index, err := strconv.Atoi(metadata["chunk_index"])
	if err != nil {
		return models.Chunk{}, fmt.Errorf("chunk %s: bad chunk_index metadata: %w", id, err)
	}
	start, err := strconv.Atoi(metadata["start_char"])
	if err != nil {
		return models.Chunk{}, fmt.Errorf("chunk %s: bad start_char metadata: %w", id, err)
	}
	end, err := strconv.Atoi(metadata["end_char"])
	if err != nil {
		return models.Chunk{}, fmt.Errorf("chunk %s: bad end_char metadata: %w", id, err)
	}
	return models.Chunk{
		ChunkID:    id,
		CallID:     metadata["call_id"],
		CallTitle:  metadata["call_title"],
		ChunkIndex: index,
		Text:       content,
		StartChar:  start,
		EndChar:    end,
	}, nil
}
