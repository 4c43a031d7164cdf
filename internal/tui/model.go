// Package tui is the interactive console shell: free-text questions
// are answered over all ingested calls, and a small command grammar
// covers listing, summarising and ingesting transcripts.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"call-copilot/internal/helper"
	"call-copilot/internal/models"
)

// CopilotPort is the TUI-facing subset of the copilot.
type CopilotPort interface {
	Ingest(ctx context.Context, path string) (string, error)
	IngestFolder(ctx context.Context, dir string) (int, int, error)
	ListCalls(ctx context.Context) ([]string, error)
	LatestCallID(ctx context.Context) (string, error)
	AnswerQuestion(ctx context.Context, query, callID string, topK int) (*models.Response, error)
	SummariseCall(ctx context.Context, callID string) (*models.Response, error)
}

const helpText = `Commands:
  list                     show all ingested calls
  summarise last           summarise the most recent call
  summarise <call_id>      summarise a specific call
  ingest <path>            ingest one transcript file
  ingest all <folder>      ingest every transcript in a folder
  help                     show this message
  quit                     exit

Anything else is answered as a question over all ingested transcripts.`

type (
	answerMsg  struct{ resp *models.Response }
	summaryMsg struct {
		callID string
		resp   *models.Response
	}
	listMsg   struct{ ids []string }
	ingestMsg struct {
		callID   string
		ingested int
		failed   int
		folder   bool
	}
	errMsg struct{ err error }
)

// Model is the Bubble Tea model for the copilot shell.
type Model struct {
	service  CopilotPort
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	status   string
	busy     bool
	ready    bool
}

func New(service CopilotPort, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question or type help"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	vp := viewport.New(0, 0)
	vp.SetContent(banner + "\n\n" + helpText)

	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		status:   "Ready.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		vh := msg.Height - (2 + qh + rh)
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.busy {
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			return m.dispatch(line)
		}

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case answerMsg:
		m.busy = false
		m.status = "Ready."
		m.viewport.SetContent(renderResponse(msg.resp, true))
		m.viewport.GotoTop()
		return m, nil

	case summaryMsg:
		m.busy = false
		m.status = "Ready."
		m.viewport.SetContent(titleStyle.Render("Summary of "+msg.callID) + "\n\n" + renderResponse(msg.resp, false))
		m.viewport.GotoTop()
		return m, nil

	case listMsg:
		m.busy = false
		m.status = "Ready."
		m.viewport.SetContent(renderCallList(msg.ids))
		m.viewport.GotoTop()
		return m, nil

	case ingestMsg:
		m.busy = false
		m.status = "Ready."
		if msg.folder {
			m.viewport.SetContent(fmt.Sprintf("Done: %d ingested, %d failed.", msg.ingested, msg.failed))
		} else {
			m.viewport.SetContent("Ingested successfully as call ID: " + titleStyle.Render(msg.callID))
		}
		return m, nil

	case errMsg:
		m.busy = false
		m.status = "Ready."
		m.viewport.SetContent(errorStyle.Render("Error: " + msg.err.Error()))
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// dispatch routes one input line to the matching copilot operation,
// run as an async command so the shell stays responsive.
func (m Model) dispatch(line string) (tea.Model, tea.Cmd) {
	lower := strings.ToLower(line)
	switch {
	case lower == "quit" || lower == "exit":
		return m, tea.Quit

	case lower == "help":
		m.viewport.SetContent(helpText)
		return m, nil

	case lower == "list":
		return m.run("Listing calls…", func() tea.Msg {
			ids, err := m.service.ListCalls(context.Background())
			if err != nil {
				return errMsg{err}
			}
			return listMsg{ids}
		})

	case lower == "summarise last" || lower == "summarize last":
		return m.run("Summarising…", func() tea.Msg {
			callID, err := m.service.LatestCallID(context.Background())
			if err != nil {
				return errMsg{err}
			}
			if callID == "" {
				return errMsg{fmt.Errorf("no calls ingested yet")}
			}
			resp, err := m.service.SummariseCall(context.Background(), callID)
			if err != nil {
				return errMsg{err}
			}
			return summaryMsg{callID, resp}
		})

	case strings.HasPrefix(lower, "summarise ") || strings.HasPrefix(lower, "summarize "):
		callID := strings.TrimSpace(line[len("summarise "):])
		return m.run("Summarising…", func() tea.Msg {
			resp, err := m.service.SummariseCall(context.Background(), callID)
			if err != nil {
				return errMsg{err}
			}
			return summaryMsg{callID, resp}
		})

	case strings.HasPrefix(lower, "ingest all "):
		dir := strings.Trim(strings.TrimSpace(line[len("ingest all "):]), `'"`)
		return m.run("Ingesting folder…", func() tea.Msg {
			ingested, failed, err := m.service.IngestFolder(context.Background(), dir)
			if err != nil {
				return errMsg{err}
			}
			return ingestMsg{ingested: ingested, failed: failed, folder: true}
		})

	case strings.HasPrefix(lower, "ingest "):
		path := strings.Trim(strings.TrimSpace(line[len("ingest "):]), `'"`)
		return m.run("Ingesting…", func() tea.Msg {
			callID, err := m.service.Ingest(context.Background(), path)
			if err != nil {
				return errMsg{err}
			}
			return ingestMsg{callID: callID}
		})

	default:
		return m.run("Searching transcripts and thinking…", func() tea.Msg {
			resp, err := m.service.AnswerQuestion(context.Background(), line, "", 0)
			if err != nil {
				return errMsg{err}
			}
			return answerMsg{resp}
		})
	}
}

func (m Model) run(status string, work func() tea.Msg) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = status
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return work() })
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	header := titleStyle.Render("Sales Call Copilot")
	body := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + body + "\n" + input + "\n" + statusStyle.Render(status)
}

// renderResponse formats an answer with optional source snippets;
// similarity shown is 1 - distance under the cosine convention.
func renderResponse(resp *models.Response, showSources bool) string {
	var sb strings.Builder
	sb.WriteString(resp.Answer)
	if showSources && len(resp.Sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(sourceRuleStyle.Render("Sources"))
		for i, r := range resp.Sources {
			sb.WriteString(fmt.Sprintf(
				"\n  [Source %d] %s | Chunk #%d | Similarity: %.2f\n    %q",
				i+1, r.Chunk.CallTitle, r.Chunk.ChunkIndex, 1-r.Distance,
				helper.Preview(r.Chunk.Text, 150),
			))
		}
	}
	return sb.String()
}

func renderCallList(ids []string) string {
	if len(ids) == 0 {
		return "No transcripts ingested yet."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ingested calls (%d):\n", len(ids)))
	for _, id := range ids {
		sb.WriteString("  • " + id + "\n")
	}
	return sb.String()
}
