package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfrag/internal/domain"
	"pdfrag/internal/projection"
	"pdfrag/internal/service"
	"pdfrag/internal/textutil"
)

const ingestCommand = "/ingest "

// EnginePort is the TUI-facing subset of the RAG engine.
type EnginePort interface {
	Ingest(ctx context.Context, path string) domain.IngestResult
	AnswerDetails(ctx context.Context, question string) service.AnswerDetails
	Projection() (projection.Payload, bool)
	ProjectionState() projection.State
}

type answerMsg struct {
	question string
	details  service.AnswerDetails
}

type ingestMsg struct {
	path   string
	result domain.IngestResult
}

type tickMsg time.Time

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	engine    EnginePort
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	answer    string
	chunks    []domain.Chunk
	summary   string
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(engine EnginePort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /ingest <file.pdf>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{engine: engine, input: ti, viewport: vp, spinner: sp, status: "Ready. Ask a question or ingest a PDF."}
}

// Init starts the cursor blink and the projection status refresh.
func (m Model) Init() tea.Cmd { return tea.Batch(textinput.Blink, tick()) }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) askCmd(q string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{question: q, details: m.engine.AnswerDetails(context.Background(), q)}
	}
}

func (m Model) ingestCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return ingestMsg{path: path, result: m.engine.Ingest(context.Background(), path)}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + projection status
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tickMsg:
		return m, tick()
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case answerMsg:
		m.busy = false
		m.answer = msg.details.Answer
		m.chunks = msg.details.Chunks
		m.cursor = 0
		m.lastQuery = msg.question
		m.status = fmt.Sprintf("Answered %q using %d passages", msg.question, len(m.chunks))
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case ingestMsg:
		m.busy = false
		m.status = msg.result.Message
		if msg.result.Success {
			m.summary = msg.result.Summary
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			if path, ok := strings.CutPrefix(line+" ", ingestCommand); ok {
				path = strings.TrimSpace(path)
				m.status = "Ingesting " + path
				return m, tea.Batch(m.ingestCmd(path), m.spinner.Tick)
			}
			m.status = "Thinking about " + fmt.Sprintf("%q", line)
			return m, tea.Batch(m.askCmd(line), m.spinner.Tick)
		case "down":
			if len(m.chunks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.chunks)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.chunks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.chunks)) % len(m.chunks)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF RAG")
	proj := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.projectionLine())
	input := queryBoxStyle.Render(m.input.View())
	statusText := m.status
	if m.busy {
		statusText = m.spinner.View() + " " + statusText
	}
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(statusText)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + proj + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) projectionLine() string {
	state := m.engine.ProjectionState()
	if p, ok := m.engine.Projection(); ok {
		return fmt.Sprintf("Projection: %s, %d points", state, p.Len())
	}
	return fmt.Sprintf("Projection: %s", state)
}

func (m Model) renderCurrentResult() string {
	var b strings.Builder
	if m.summary != "" {
		b.WriteString(summaryStyle.Render("Last document: " + m.summary))
		b.WriteString("\n\n")
	}
	if m.answer == "" {
		b.WriteString("No answer yet.")
		return b.String()
	}
	b.WriteString(answerStyle.Render(m.answer))
	if len(m.chunks) == 0 {
		return b.String()
	}
	c := m.chunks[m.cursor]
	fmt.Fprintf(&b, "\n\nPassage %d/%d (up/down to browse)\n\n", m.cursor+1, len(m.chunks))
	b.WriteString(highlightBestSentence(c.Text, m.lastQuery))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	sentenceRe     = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	// Passages are fixed-size windows, so the last sentence is often cut
	// short; it is kept as its own segment.
	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textutil.Words(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if !textutil.IsStopword(t) {
			m[t] = struct{}{}
		}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := map[string]struct{}{}
	for _, t := range textutil.Words(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
