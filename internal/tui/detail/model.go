package detail

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// State of the lazily loaded content.
type State int

// Load states.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

// LoadFunc fetches the content for key.
type LoadFunc func(ctx context.Context, key string) (string, error)

// LoadedMsg carries the result of a load. Seq discards results of superseded loads.
type LoadedMsg struct {
	Key     string
	Seq     int
	Content string
	Err     error
}

// Model tracks one lazily loaded text.
type Model struct {
	ctx     context.Context
	load    LoadFunc
	key     string
	seq     int
	state   State
	content string
	err     error
}

// New creates an idle model.
func New(ctx context.Context, load LoadFunc) Model {
	return Model{ctx: ctx, load: load}
}

// Open starts loading key unless it is already loaded or loading.
func (m Model) Open(key string) (Model, tea.Cmd) {
	if key == m.key && (m.state == StateLoaded || m.state == StateLoading) {
		return m, nil
	}
	m.key = key
	return m.start()
}

// Retry reloads the current key after an error.
func (m Model) Retry() (Model, tea.Cmd) {
	if m.state != StateError {
		return m, nil
	}
	return m.start()
}

func (m Model) start() (Model, tea.Cmd) {
	m.seq++
	m.state = StateLoading
	m.content = ""
	m.err = nil
	if m.load == nil {
		m.state = StateError
		m.err = fmt.Errorf("no loader for %s", m.key)
		return m, nil
	}
	ctx, key, seq, load := m.ctx, m.key, m.seq, m.load
	return m, func() tea.Msg {
		content, err := load(ctx, key)
		return LoadedMsg{Key: key, Seq: seq, Content: content, Err: err}
	}
}

// Update applies a LoadedMsg for the current load.
func (m Model) Update(msg tea.Msg) Model {
	loaded, ok := msg.(LoadedMsg)
	if !ok || loaded.Key != m.key || loaded.Seq != m.seq {
		return m
	}
	if loaded.Err != nil {
		m.state = StateError
		m.err = loaded.Err
		return m
	}
	m.state = StateLoaded
	m.content = loaded.Content
	return m
}

// State returns the load state.
func (m Model) State() State { return m.state }

// Content returns the loaded text.
func (m Model) Content() string { return m.content }

// Err returns the last load error.
func (m Model) Err() error { return m.err }

// View renders the content, at most maxLines lines (0 = unlimited).
func (m Model) View(maxLines int) string {
	switch m.state {
	case StateLoading:
		return "Loading..."
	case StateError:
		return fmt.Sprintf("Failed to load: %v\nPress r to retry.", m.err)
	case StateLoaded:
		if maxLines <= 0 {
			return m.content
		}
		lines := strings.Split(m.content, "\n")
		if len(lines) <= maxLines {
			return m.content
		}
		return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-maxLines)
	case StateIdle:
	}
	return ""
}
