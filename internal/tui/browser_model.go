package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/fetcher"
	"github.com/exptechtw/tremstore/internal/tui/detail"
	listview "github.com/exptechtw/tremstore/internal/tui/list"
)

// LoadFunc loads the plugin catalog. force skips the freshness check.
type LoadFunc func(ctx context.Context, force bool) (*fetcher.Result[[]catalog.Plugin], error)

// BrowserOptions configure the browser.
type BrowserOptions struct {
	VerifiedAuthor string
	InstallScheme  string
	// Readme loads the README of a repository ("owner/repo"). Optional.
	Readme detail.LoadFunc
	// Now is the clock used for relative times. Defaults to time.Now.
	Now func() time.Time
}

// LoadEventMsg forwards a loader status event into the program.
type LoadEventMsg struct {
	Event fetcher.Event
}

type pluginsLoadedMsg struct {
	result *fetcher.Result[[]catalog.Plugin]
	err    error
}

// BrowserModel is the Bubble Tea model of the catalog browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowserModel struct {
	ctx  context.Context
	load LoadFunc
	opts BrowserOptions

	state ViewState
	all   []catalog.Plugin
	rows  []catalog.Plugin
	list  *listview.Model[catalog.Plugin]

	textInput  textinput.Model
	showFilter bool
	sortField  catalog.SortField
	sortOrder  catalog.SortOrder

	loading    *LoadingState
	refreshing bool
	status     fetcher.Status
	fetchedAt  time.Time
	notice     string
	err        error

	selected catalog.Plugin
	readme   detail.Model

	width  int
	height int
}

// NewBrowserModel creates a browser that starts loading immediately.
func NewBrowserModel(ctx context.Context, load LoadFunc, opts BrowserOptions) BrowserModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := BrowserModel{
		ctx:       ctx,
		load:      load,
		opts:      opts,
		state:     ViewStateLoading,
		textInput: newTextInput(),
		sortField: catalog.SortByName,
		sortOrder: catalog.DefaultOrder(catalog.SortByName),
		loading:   NewLoadingState("Loading plugins..."),
		readme:    detail.New(ctx, opts.Readme),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	var lv *listview.Model[catalog.Plugin]
	lv = listview.New[catalog.Plugin](nil, m.listHeight(), m.width, func(p catalog.Plugin, selected bool) string {
		return renderPluginRow(p, selected, lv.Width(), opts)
	})
	m.list = lv
	return m
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name, description or author"
	ti.CharLimit = 64
	return ti
}

// Init starts the spinner and the first load (Bubble Tea interface).
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.loadCmd(false))
}

func (m BrowserModel) loadCmd(force bool) tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		res, err := load(ctx, force)
		return pluginsLoadedMsg{result: res, err: err}
	}
}

// Update handles messages (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listHeight(), m.width)
		return m, nil
	case spinner.TickMsg:
		if m.state == ViewStateLoading || m.refreshing {
			return m, m.loading.Update(msg)
		}
		return m, nil
	case LoadEventMsg:
		return m.handleLoadEvent(msg.Event), nil
	case pluginsLoadedMsg:
		return m.handleLoaded(msg)
	case detail.LoadedMsg:
		m.readme = m.readme.Update(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.state {
	case ViewStateList:
		return m.handleListKeypress(keyMsg)
	case ViewStateDetail:
		return m.handleDetailKeypress(keyMsg)
	case ViewStateError:
		return m.handleErrorKeypress(keyMsg)
	case ViewStateLoading:
		if keyMsg.String() == keyQuit {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	case ViewStateQuitting:
	}
	return m, nil
}

func (m BrowserModel) handleLoadEvent(e fetcher.Event) BrowserModel {
	switch e.Status {
	case fetcher.StatusRetrying:
		m.notice = e.Message()
		m.loading.SetMessage(e.Message())
	case fetcher.StatusStale:
		m.notice = e.Message()
	default:
	}
	return m
}

func (m BrowserModel) handleLoaded(msg pluginsLoadedMsg) (tea.Model, tea.Cmd) {
	m.refreshing = false
	m.loading.SetMessage("Loading plugins...")

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		// A failed refresh keeps the data already on screen.
		if len(m.all) > 0 {
			m.notice = fmt.Sprintf("refresh failed: %v", msg.err)
			return m, nil
		}
		m.err = msg.err
		m.state = ViewStateError
		return m, nil
	}

	res := msg.result
	m.err = nil
	m.status = res.Status
	m.fetchedAt = res.FetchedAt
	m.notice = ""
	if res.Status == fetcher.StatusStale {
		m.notice = res.Message
	}
	m.all = res.Value
	m.applyFilter()
	if m.state != ViewStateDetail {
		m.state = ViewStateList
	}
	return m, nil
}

func (m BrowserModel) handleListKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		p, ok := m.list.SelectedItem()
		if !ok {
			return m, nil
		}
		m.selected = p
		m.state = ViewStateDetail
		if p.Repository.FullName == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.readme, cmd = m.readme.Open(p.Repository.FullName)
		return m, cmd
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keySort:
		m.cycleSort()
		return m, nil
	case keyOrder:
		m.sortOrder = m.sortOrder.Flip()
		m.applyFilter()
		return m, nil
	case keyRefresh:
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.loading.SetMessage("Refreshing...")
		return m, tea.Batch(m.loading.Init(), m.loadCmd(true))
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.applyFilter()
		}
		return m, nil
	default:
		return m, m.list.Update(keyMsg)
	}
}

func (m BrowserModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter:
			m.showFilter = false
			m.textInput.Blur()
			return m, nil
		case keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.textInput.SetValue("")
			m.applyFilter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m BrowserModel) handleDetailKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc, keyBackspace:
		m.state = ViewStateList
		return m, nil
	case keyRefresh:
		var cmd tea.Cmd
		m.readme, cmd = m.readme.Retry()
		return m, cmd
	}
	return m, nil
}

func (m BrowserModel) handleErrorKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyQuit, keyEsc:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRefresh:
		m.state = ViewStateLoading
		m.err = nil
		m.notice = ""
		return m, tea.Batch(m.loading.Init(), m.loadCmd(false))
	}
	return m, nil
}

// cycleSort advances to the next sort field with its natural order.
func (m *BrowserModel) cycleSort() {
	fields := catalog.SortFields()
	next := fields[0]
	for i, f := range fields {
		if f == m.sortField {
			next = fields[(i+1)%len(fields)]
			break
		}
	}
	m.sortField = next
	m.sortOrder = catalog.DefaultOrder(next)
	m.applyFilter()
}

// applyFilter recomputes the visible rows from the filter and sort settings.
func (m *BrowserModel) applyFilter() {
	m.rows = catalog.Sort(catalog.Search(m.all, m.textInput.Value()), m.sortField, m.sortOrder)
	m.list.SetItems(m.rows)
}

func (m BrowserModel) listHeight() int {
	return max(m.height-chromeLines, 1)
}

// State returns the current view state.
func (m BrowserModel) State() ViewState { return m.state }

// Rows returns the filtered, sorted plugins.
func (m BrowserModel) Rows() []catalog.Plugin { return m.rows }

// Err returns the terminal load error shown in the error state.
func (m BrowserModel) Err() error { return m.err }
