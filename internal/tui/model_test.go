package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"call-copilot/internal/models"
)

type fakePort struct {
	ids       []string
	latest    string
	resp      *models.Response
	err       error
	questions []string
	summaries []string
	ingests   []string
}

func (f *fakePort) Ingest(_ context.Context, path string) (string, error) {
	f.ingests = append(f.ingests, path)
	return "demo_call", f.err
}

func (f *fakePort) IngestFolder(_ context.Context, dir string) (int, int, error) {
	return 2, 1, f.err
}

func (f *fakePort) ListCalls(context.Context) ([]string, error) { return f.ids, f.err }

func (f *fakePort) LatestCallID(context.Context) (string, error) { return f.latest, f.err }

func (f *fakePort) AnswerQuestion(_ context.Context, query, callID string, topK int) (*models.Response, error) {
	f.questions = append(f.questions, query)
	return f.resp, f.err
}

func (f *fakePort) SummariseCall(_ context.Context, callID string) (*models.Response, error) {
	f.summaries = append(f.summaries, callID)
	return f.resp, f.err
}

// runLine types a line into the model and executes the async command
// batch it produces, returning the copilot message.
func runLine(t *testing.T, m Model, line string) tea.Msg {
	t.Helper()
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return msg
	}
	for _, c := range batch {
		got := c()
		switch got.(type) {
		case answerMsg, summaryMsg, listMsg, ingestMsg, errMsg:
			return got
		}
	}
	return nil
}

func TestDispatchList(t *testing.T) {
	port := &fakePort{ids: []string{"a", "b"}}
	msg := runLine(t, New(port, "banner"), "list")
	lm, ok := msg.(listMsg)
	if !ok {
		t.Fatalf("got %T, want listMsg", msg)
	}
	if len(lm.ids) != 2 {
		t.Fatalf("ids = %v", lm.ids)
	}
}

func TestDispatchSummariseLast(t *testing.T) {
	port := &fakePort{latest: "zeta", resp: &models.Response{Answer: "sum"}}
	msg := runLine(t, New(port, ""), "summarise last")
	sm, ok := msg.(summaryMsg)
	if !ok {
		t.Fatalf("got %T, want summaryMsg", msg)
	}
	if sm.callID != "zeta" {
		t.Errorf("callID = %q, want zeta", sm.callID)
	}
}

func TestDispatchSummariseLastWithoutCalls(t *testing.T) {
	msg := runLine(t, New(&fakePort{}, ""), "summarise last")
	if _, ok := msg.(errMsg); !ok {
		t.Fatalf("got %T, want errMsg when nothing is ingested", msg)
	}
}

func TestDispatchSummariseSpecificCall(t *testing.T) {
	port := &fakePort{resp: &models.Response{Answer: "sum"}}
	msg := runLine(t, New(port, ""), "summarise acme_renewal")
	if _, ok := msg.(summaryMsg); !ok {
		t.Fatalf("got %T, want summaryMsg", msg)
	}
	if len(port.summaries) != 1 || port.summaries[0] != "acme_renewal" {
		t.Errorf("summaries = %v", port.summaries)
	}
}

func TestDispatchIngestStripsQuotes(t *testing.T) {
	port := &fakePort{}
	msg := runLine(t, New(port, ""), `ingest "./data/demo_call.txt"`)
	if _, ok := msg.(ingestMsg); !ok {
		t.Fatalf("got %T, want ingestMsg", msg)
	}
	if len(port.ingests) != 1 || port.ingests[0] != "./data/demo_call.txt" {
		t.Errorf("ingests = %v", port.ingests)
	}
}

func TestDispatchFreeTextIsQuestion(t *testing.T) {
	port := &fakePort{resp: &models.Response{Answer: "42"}}
	msg := runLine(t, New(port, ""), "what was the pricing objection?")
	if _, ok := msg.(answerMsg); !ok {
		t.Fatalf("got %T, want answerMsg", msg)
	}
	if len(port.questions) != 1 || port.questions[0] != "what was the pricing objection?" {
		t.Errorf("questions = %v", port.questions)
	}
}

func TestDispatchErrorSurfaces(t *testing.T) {
	port := &fakePort{err: errors.New("store offline")}
	msg := runLine(t, New(port, ""), "list")
	em, ok := msg.(errMsg)
	if !ok {
		t.Fatalf("got %T, want errMsg", msg)
	}
	if !strings.Contains(em.err.Error(), "store offline") {
		t.Errorf("err = %v", em.err)
	}
}

func TestRenderResponseShowsSimilarity(t *testing.T) {
	resp := &models.Response{
		Answer: "The budget was approved. [Source 1]",
		Sources: []models.SearchResult{{
			Chunk:    models.Chunk{CallTitle: "demo call", ChunkIndex: 2, Text: "the budget was approved by finance"},
			Distance: 0.25,
		}},
	}
	out := renderResponse(resp, true)
	if !strings.Contains(out, "Similarity: 0.75") {
		t.Errorf("similarity not rendered as 1 - distance:\n%s", out)
	}
	if !strings.Contains(out, "[Source 1] demo call | Chunk #2") {
		t.Errorf("source line malformed:\n%s", out)
	}
}

func TestRenderCallListEmpty(t *testing.T) {
	if got := renderCallList(nil); !strings.Contains(got, "No transcripts") {
		t.Errorf("renderCallList(nil) = %q", got)
	}
}
