package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Paranoid-AF/sujhav/generate"
	"github.com/Paranoid-AF/sujhav/session"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Predictor turns a buffer snapshot into next-word suggestions.
type Predictor interface {
	Predict(ctx context.Context, text string) *generate.Result
	Resample(ctx context.Context, text string) *generate.Result
}

// predictionMsg carries a finished prediction back to the update loop.
type predictionMsg struct {
	id      int
	text    string
	refresh bool
	result  *generate.Result
}

// Model is the Bubble Tea model of the typing REPL.
type Model struct {
	input   textinput.Model
	sess    *session.Session
	engine  Predictor
	model   string
	out     io.Writer // transcript, may be nil
	entries int

	suggestions []string
	err         error
	loading     bool

	// reqID identifies the latest prediction; older results are dropped.
	reqID  int
	cancel context.CancelFunc

	width int
}

// NewModel creates the REPL model. out receives the TOML transcript and may
// be nil.
func NewModel(engine Predictor, modelName string, out io.Writer) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "यहाँ हिंदी में लिखें..."
	ti.Focus()

	return &Model{
		input:  ti,
		sess:   session.New("repl"),
		engine: engine,
		model:  modelName,
		out:    out,
		width:  80,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case predictionMsg:
		return m.handlePrediction(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.stop()
		return m, tea.Quit

	case acceptIndex(msg) >= 0:
		i := acceptIndex(msg)
		if i >= len(m.suggestions) {
			return m, nil
		}
		m.sess.Accept(m.suggestions[i])
		return m, m.syncInput()

	case key.Matches(msg, keys.Undo):
		m.sess.UndoLastWord()
		return m, m.syncInput()

	case key.Matches(msg, keys.Terminate):
		m.sess.AppendTerminator()
		return m, m.syncInput()

	case key.Matches(msg, keys.Clear):
		m.sess.Clear()
		return m, m.syncInput()

	case key.Matches(msg, keys.Refresh):
		return m, m.predict(true)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == m.sess.Text() {
		return m, cmd
	}
	m.sess.SetText(m.input.Value())
	return m, tea.Batch(cmd, m.predict(false))
}

// syncInput shows the session buffer in the input after a session edit and
// predicts on it.
func (m *Model) syncInput() tea.Cmd {
	m.input.SetValue(m.sess.Text())
	m.input.CursorEnd()
	return m.predict(false)
}

// predict cancels the in-flight prediction and starts a new one on the
// current buffer.
func (m *Model) predict(refresh bool) tea.Cmd {
	m.stop()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.reqID++
	m.loading = true

	id := m.reqID
	text := m.sess.Text()
	engine := m.engine
	return func() tea.Msg {
		var res *generate.Result
		if refresh {
			res = engine.Resample(ctx, text)
		} else {
			res = engine.Predict(ctx, text)
		}
		return predictionMsg{id: id, text: text, refresh: refresh, result: res}
	}
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) handlePrediction(msg predictionMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.reqID {
		return m, nil
	}
	m.loading = false
	m.suggestions = msg.result.Suggestions
	m.err = msg.result.Err

	// Skip transcript entries for buffers that never reached the model.
	if m.out != nil && (msg.result.Context != "" || msg.result.Err != nil) {
		m.entries++
		if err := writeEntry(m.out, m.entries, msg.text, msg.refresh, msg.result); err != nil {
			m.err = fmt.Errorf("transcript: %w", err)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("सुझाव"))
	b.WriteString(subtleStyle.Render("  " + m.model))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	case len(m.suggestions) > 0:
		b.WriteString(subtleStyle.Render("अगले शब्द के सुझाव:"))
		b.WriteString("\n")
		b.WriteString(renderChips(m.suggestions))
	case m.loading:
		b.WriteString(subtleStyle.Render("सुझाव तैयार हो रहे हैं..."))
	default:
		b.WriteString(subtleStyle.Render("(no suggestions)"))
	}
	b.WriteString("\n\n")

	snap := m.sess.Snapshot()
	st := snap.Stats
	b.WriteString(subtleStyle.Render(fmt.Sprintf("शब्द %d · अक्षर %d · वाक्य %d", st.Words, st.Characters, st.Sentences)))
	b.WriteString("\n")
	if len(snap.Recent) > 0 {
		b.WriteString(subtleStyle.Render("हाल के सुझाव: " + strings.Join(snap.Recent, " • ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("alt+1..4 accept · ctrl+z undo word · ctrl+t । · ctrl+r new suggestions · ctrl+l clear · esc quit"))
	b.WriteString("\n")
	return b.String()
}
