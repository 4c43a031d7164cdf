// Package copilot composes the retrieval index and the generation
// backend into the two user-facing operations: question answering over
// retrieved transcript excerpts, and whole-call summarisation.
package copilot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"call-copilot/internal/config"
	"call-copilot/internal/llm"
	"call-copilot/internal/models"
	"call-copilot/internal/segmenter"
	"call-copilot/internal/store"
	"call-copilot/internal/transcript"
)

const (
	defaultTopK       = 5
	ingestConcurrency = 4
)

// Copilot owns one retrieval index and one generation backend, both
// injected at construction.
type Copilot struct {
	index     store.Index
	generator llm.Generator
	chunkSize int
	overlap   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(index store.Index, generator llm.Generator, seg config.SegmenterConfig) *Copilot {
	return &Copilot{
		index:     index,
		generator: generator,
		chunkSize: seg.ChunkSize,
		overlap:   seg.Overlap,
		locks:     map[string]*sync.Mutex{},
	}
}

// callLock returns the mutex serializing upserts for one call. The
// store's delete-then-insert replace is not safe against concurrent
// re-ingestion of the same call, so ingestion takes this lock.
func (c *Copilot) callLock(callID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[callID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[callID] = l
	}
	return l
}

// Ingest reads one transcript file, segments it, and replaces the
// call's chunk set in the index. Returns the derived call ID.
func (c *Copilot) Ingest(ctx context.Context, path string) (string, error) {
	tr, err := transcript.Read(path)
	if err != nil {
		return "", err
	}
	pieces, err := segmenter.Segment(tr.Text, c.chunkSize, c.overlap)
	if err != nil {
		return "", err
	}

	l := c.callLock(tr.CallID)
	l.Lock()
	defer l.Unlock()

	callID, err := c.index.Upsert(ctx, tr.CallID, tr.Title, pieces)
	if err != nil {
		return "", err
	}
	log.Info().
		Str("request_id", uuid.NewString()).
		Str("call_id", callID).
		Int("chunks", len(pieces)).
		Str("path", path).
		Msg("ingested transcript")
	return callID, nil
}

// IngestFolder ingests every supported transcript file directly inside
// dir, a few files at a time. Per-file failures are logged and counted
// but do not abort the rest of the batch.
func (c *Copilot) IngestFolder(ctx context.Context, dir string) (ingested, failed int, err error) {
	paths, err := transcript.ListFolder(dir)
	if err != nil {
		return 0, 0, err
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if _, err := c.Ingest(ctx, path); err != nil {
				log.Error().Err(err).Str("path", path).Msg("ingest failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			ingested++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ingested, failed, err
	}
	return ingested, failed, nil
}

// ListCalls returns the sorted ingested call IDs.
func (c *Copilot) ListCalls(ctx context.Context) ([]string, error) {
	return c.index.ListCallIDs(ctx)
}

// LatestCallID approximates "the most recent call" as the
// alphabetically last call ID; the index keeps no ingestion timestamp.
// Returns "" when nothing has been ingested.
func (c *Copilot) LatestCallID(ctx context.Context) (string, error) {
	ids, err := c.index.ListCallIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[len(ids)-1], nil
}

// AnswerQuestion retrieves the topK most relevant chunks (optionally
// restricted to one call) and asks the generator to answer from them.
// With no matching chunks it returns the canned fallback and never
// touches the generator.
func (c *Copilot) AnswerQuestion(ctx context.Context, query, callID string, topK int) (*models.Response, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	results, err := c.index.Search(ctx, query, callID, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.Response{Answer: models.NoRelevantInfoAnswer, Sources: []models.SearchResult{}}, nil
	}

	userMsg := fmt.Sprintf(models.QAUserTemplate, formatContext(results), query)
	answer, err := c.generator.Generate(ctx, models.QASystemPrompt, userMsg, models.QATemperature)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("request_id", uuid.NewString()).
		Str("call_id", callID).
		Int("sources", len(results)).
		Msg("answered question")
	return &models.Response{Answer: strings.TrimSpace(answer), Sources: results}, nil
}

// SummariseCall reconstructs the full transcript from the stored
// chunks and asks the generator for the structured five-section
// summary. An unknown or empty call yields the canned fallback.
func (c *Copilot) SummariseCall(ctx context.Context, callID string) (*models.Response, error) {
	chunks, err := c.index.GetAllChunks(ctx, callID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		texts = append(texts, ch.Text)
	}
	full := strings.Join(texts, "\n")
	if strings.TrimSpace(full) == "" {
		return &models.Response{
			Answer:  fmt.Sprintf(models.NoTranscriptAnswer, callID),
			Sources: []models.SearchResult{},
		}, nil
	}

	userMsg := fmt.Sprintf(models.SummaryUserTemplate, full)
	answer, err := c.generator.Generate(ctx, models.SummarySystemPrompt, userMsg, models.SummaryTemperature)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("request_id", uuid.NewString()).
		Str("call_id", callID).
		Msg("summarised call")
	return &models.Response{Answer: strings.TrimSpace(answer), Sources: []models.SearchResult{}}, nil
}

// formatContext builds the numbered context block fed to the
// generator. Entry i is 1-based and matches result order, so the model
// can cite [Source i].
func formatContext(results []models.SearchResult) string {
	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf(
			"[Source %d | Call: %s | Chunk #%d]\n%s",
			i+1, r.Chunk.CallTitle, r.Chunk.ChunkIndex, strings.TrimSpace(r.Chunk.Text),
		))
	}
	return strings.Join(entries, models.ContextEntrySeparator)
}
