// Package tui implements the interactive plugin catalog browser.
package tui

import (
	"os"

	"golang.org/x/term"
)

// ViewState is the screen the browser is showing.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateError
	ViewStateQuitting
)

// String names the state for logs and tests.
func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateError:
		return "error"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Key bindings.
const (
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyEnter     = "enter"
	keyEsc       = "esc"
	keyBackspace = "backspace"
	keySlash     = "/"
	keySort      = "s"
	keyOrder     = "o"
	keyRefresh   = "r"
)

// Layout defaults used until the first WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 30
	borderPadding = 2
	// chromeLines is the header, status bar and help line around the list.
	chromeLines = 5
)

// IsTTY reports whether stdin and stdout are both terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
