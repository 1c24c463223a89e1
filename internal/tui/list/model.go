package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. selected marks the highlighted row.
type RenderFunc[T any] func(item T, selected bool) string

// Model is a scrolling list that renders only the visible window.
type Model[T any] struct {
	items    []T
	render   RenderFunc[T]
	selected int
	from, to int
	height   int
	width    int
}

// New creates a list of height rows.
func New[T any](items []T, height, width int, render RenderFunc[T]) *Model[T] {
	m := &Model[T]{
		items:  items,
		render: render,
		height: max(height, 1),
		width:  width,
	}
	m.updateWindow()
	return m
}

// SetItems replaces the items and clamps the selection.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.SetSelected(m.selected)
}

// SetSize changes the viewport.
func (m *Model[T]) SetSize(height, width int) {
	m.height = max(height, 1)
	m.width = width
	m.updateWindow()
}

// Update handles navigation keys. Other messages are ignored.
func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return nil
	}

	switch key.String() {
	case "up", "k":
		m.SetSelected(m.selected - 1)
	case "down", "j":
		m.SetSelected(m.selected + 1)
	case "pgup":
		m.SetSelected(m.selected - m.height)
	case "pgdown":
		m.SetSelected(m.selected + m.height)
	case "home", "g":
		m.SetSelected(0)
	case "end", "G":
		m.SetSelected(len(m.items) - 1)
	}
	return nil
}

// updateWindow keeps the selection inside [from, to), scrolling as little as possible.
func (m *Model[T]) updateWindow() {
	n := len(m.items)
	if n == 0 {
		m.from, m.to = 0, 0
		return
	}
	if m.selected < m.from {
		m.from = m.selected
	}
	if m.selected >= m.from+m.height {
		m.from = m.selected - m.height + 1
	}
	if m.from+m.height > n {
		m.from = max(n-m.height, 0)
	}
	m.to = min(m.from+m.height, n)
}

// View renders the visible rows.
func (m *Model[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	for i := m.from; i < m.to; i++ {
		if i > m.from {
			b.WriteByte('\n')
		}
		b.WriteString(m.render(m.items[i], i == m.selected))
	}
	return b.String()
}

// Len returns the number of items.
func (m *Model[T]) Len() int { return len(m.items) }

// Selected returns the selected index.
func (m *Model[T]) Selected() int { return m.selected }

// Window returns the visible range [from, to).
//
//nolint:nonamedreturns // from and to read better named.
func (m *Model[T]) Window() (from, to int) { return m.from, m.to }

// SetSelected moves the selection, clamped to the items.
func (m *Model[T]) SetSelected(index int) {
	switch {
	case len(m.items) == 0:
		m.selected = 0
	case index < 0:
		m.selected = 0
	case index >= len(m.items):
		m.selected = len(m.items) - 1
	default:
		m.selected = index
	}
	m.updateWindow()
}

// SelectedItem returns the selected item, or false when the list is empty.
func (m *Model[T]) SelectedItem() (T, bool) {
	if len(m.items) == 0 {
		var zero T
		return zero, false
	}
	return m.items[m.selected], true
}

// Width returns the viewport width.
func (m *Model[T]) Width() int { return m.width }
