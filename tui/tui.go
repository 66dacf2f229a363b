// Package tui implements the interactive terminal chat client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/export"
	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/provider"
	"github.com/SAMRAT47/genchat/pkg/session"
)

type state int

const (
	stateReady state = iota
	stateStreaming
)

const tempStep = 0.1

// Model is the Bubble Tea model for the chat client.
type Model struct {
	cfg      config.Config
	registry *provider.Registry
	store    session.Store
	sid      string

	providers   []provider.Provider
	providerIdx int
	modelIdx    int
	temperature float64
	maxTokens   int

	state   state
	stream  provider.Stream
	cancel  context.CancelFunc
	pending string
	lastErr string

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model
	keys     keyMap
	styles   styles
	renderer interface {
		Render(string) (string, error)
	}

	status string
	width  int
	height int
	sized  bool
}

// New builds a chat model seeded from the configuration defaults. The
// conversation lives in memory for the lifetime of the program.
func New(cfg config.Config) (Model, error) {
	registry := provider.NewRegistry(cfg)
	providers := registry.List()
	if len(providers) == 0 {
		return Model{}, errors.New("no providers configured")
	}

	store := session.NewMemoryStore()
	sess, err := store.Create(context.Background())
	if err != nil {
		return Model{}, err
	}

	providerIdx := 0
	for i, p := range providers {
		if p.ID() == cfg.Defaults.Provider {
			providerIdx = i
			break
		}
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		cfg:         cfg,
		registry:    registry,
		store:       store,
		sid:         sess.ID,
		providers:   providers,
		providerIdx: providerIdx,
		temperature: cfg.Defaults.Temperature,
		maxTokens:   cfg.Defaults.MaxTokens,
		viewport:    vp,
		input:       ta,
		spin:        sp,
		keys:        defaultKeyMap(),
		styles:      newStyles(),
	}, nil
}

// Run starts the chat client and blocks until it exits.
func Run(cfg config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive chat requires a terminal")
	}

	m, err := New(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sized = true
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-m.chromeHeight(), 3)
		m.input.SetWidth(msg.Width - 2)
		m.renderer = nil
		if r := newRenderer(max(msg.Width-4, 20)); r != nil {
			m.renderer = r
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case streamStartedMsg:
		m.stream = msg.stream
		return m, m.readNext()

	case streamChunkMsg:
		m.pending += msg.chunk.Message.Content
		m.refresh()
		if msg.chunk.Done {
			return m.finishStream()
		}
		return m, m.readNext()

	case streamDoneMsg:
		return m.finishStream()

	case streamErrMsg:
		m.lastErr = msg.err.Error()
		m.pending = ""
		m.state = stateReady
		m.closeStream()
		m.refresh()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != stateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.state != stateStreaming {
			return m, nil
		}
		m.closeStream()
		// Keep whatever arrived before the cancel.
		if m.pending != "" {
			m.store.Append(context.Background(), m.sid, llm.NewMessage(llm.RoleAssistant, m.pending))
			m.pending = ""
		}
		m.state = stateReady
		m.status = "generation canceled"
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.NextProv):
		if m.state == stateStreaming {
			return m, nil
		}
		m.providerIdx = (m.providerIdx + 1) % len(m.providers)
		m.modelIdx = 0
		m.status = ""
		if p := m.current(); !p.Available() {
			pc := m.cfg.Providers[p.ID()]
			m.status = fmt.Sprintf("%s not found in environment variables", pc.KeyEnv)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		if m.state == stateStreaming {
			return m, nil
		}
		if models := m.current().Models(); len(models) > 0 {
			m.modelIdx = (m.modelIdx + 1) % len(models)
		}
		return m, nil

	case key.Matches(msg, m.keys.TempUp):
		m.temperature = clampTemp(m.temperature + tempStep)
		return m, nil

	case key.Matches(msg, m.keys.TempDown):
		m.temperature = clampTemp(m.temperature - tempStep)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportTranscript()

	case key.Matches(msg, m.keys.Clear):
		if m.state == stateStreaming {
			return m, nil
		}
		if err := m.store.Clear(context.Background(), m.sid); err != nil {
			m.status = "clear failed: " + err.Error()
			return m, nil
		}
		m.pending = ""
		m.lastErr = ""
		m.status = "conversation cleared"
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submit()
	}

	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == stateStreaming {
		return m, nil
	}

	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	p := m.current()
	if !p.Available() {
		pc := m.cfg.Providers[p.ID()]
		m.lastErr = fmt.Sprintf("%s not found in environment variables", pc.KeyEnv)
		m.refresh()
		return m, nil
	}

	if err := m.store.Append(context.Background(), m.sid, llm.NewMessage(llm.RoleUser, content)); err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.input.Reset()
	m.lastErr = ""
	m.status = ""
	m.state = stateStreaming
	m.refresh()

	return m, tea.Batch(m.startStream(p), m.spin.Tick)
}

// startStream kicks off the provider call on a snapshot of the history
// taken now. Parameter changes made afterwards apply to the next call.
func (m *Model) startStream(p provider.Provider) tea.Cmd {
	sess, err := m.store.Get(context.Background(), m.sid)
	if err != nil {
		return func() tea.Msg { return streamErrMsg{err} }
	}

	msgs := provider.Conversation(sess.Messages)
	model := m.currentModel()
	opts := llm.Options{
		Temperature: llm.Float64(m.temperature),
		MaxTokens:   llm.Int(m.maxTokens),
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return func() tea.Msg {
		stream, err := p.ChatStream(ctx, model, msgs, opts)
		if err != nil {
			return streamErrMsg{err}
		}
		return streamStartedMsg{stream}
	}
}

func (m Model) readNext() tea.Cmd {
	stream := m.stream
	return func() tea.Msg {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return streamDoneMsg{}
		}
		if err != nil {
			return streamErrMsg{err}
		}
		return streamChunkMsg{chunk: chunk}
	}
}

func (m Model) finishStream() (tea.Model, tea.Cmd) {
	if m.pending != "" {
		if err := m.store.Append(context.Background(), m.sid, llm.NewMessage(llm.RoleAssistant, m.pending)); err != nil {
			m.status = err.Error()
		}
	}
	m.pending = ""
	m.state = stateReady
	m.closeStream()
	m.refresh()
	return m, nil
}

func (m *Model) closeStream() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
}

func (m Model) exportTranscript() tea.Cmd {
	store, sid := m.store, m.sid
	return func() tea.Msg {
		sess, err := store.Get(context.Background(), sid)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if len(sess.Messages) == 0 {
			return exportDoneMsg{err: errors.New("nothing to export yet")}
		}

		exporter, err := export.New(export.FormatText)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		content, err := exporter.Export(sess)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		path := export.Filename(exporter, time.Now())
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (m *Model) refresh() {
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) current() provider.Provider {
	return m.providers[m.providerIdx]
}

func (m Model) currentModel() string {
	models := m.current().Models()
	if len(models) == 0 {
		return ""
	}
	return models[m.modelIdx%len(models)]
}

func (m Model) chromeHeight() int {
	// header + input + help line
	return 2 + m.input.Height() + 2
}

func clampTemp(t float64) float64 {
	t = math.Round(t*10) / 10
	return min(max(t, llm.MinTemperature), llm.MaxTemperature)
}
