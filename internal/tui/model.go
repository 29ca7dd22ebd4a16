// Package tui implements the interactive category selection front end.
//
// Every state change travels through the flow router as an encoded navigation
// token, exactly like a remote front end would drive it: the model builds a
// token, packs it with the codec, and hands the payload to a command that
// decodes and dispatches it. The TUI never mutates a session directly.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"lotsweep/internal/cli"
	"lotsweep/internal/flow"
	"lotsweep/internal/model"
	"lotsweep/internal/selection"
	"lotsweep/internal/token"
)

type phase int

const (
	phaseLoading phase = iota
	phaseSelect
	phaseConfirm
	phaseSweeping
	phaseReport
	phaseNotice
	phaseError
)

// responseMsg carries a router response back into the update loop.
type responseMsg struct {
	resp flow.Response
	err  error
}

// Model is the bubbletea model for the selection flow.
type Model struct {
	router  *flow.Router
	err     error
	vm      *selection.ViewModel
	confirm *flow.ConfirmView
	report  *model.DeletionReport
	notice  string
	current token.Token
	keys    KeyMap
	spinner spinner.Model
	cursor  int
	phase   phase
}

// NewModel creates the TUI model over the given router.
func NewModel(router *flow.Router) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cli.CursorStyle
	return Model{
		router:  router,
		keys:    DefaultKeyMap(),
		spinner: sp,
		phase:   phaseLoading,
	}
}

// Init kicks off the initial category fetch.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.router.StartSelection(context.Background(), false)
		return responseMsg{resp: resp, err: err}
	}
}

// dispatch encodes tok, then decodes and routes the payload, mirroring the
// stateless round trip a remote transport would perform.
func (m Model) dispatch(tok token.Token) tea.Cmd {
	router := m.router
	return func() tea.Msg {
		payload, err := tok.Encode()
		if err != nil {
			return responseMsg{err: err}
		}
		decoded, err := token.Decode(payload)
		if err != nil {
			return responseMsg{err: err}
		}
		resp, err := router.Handle(context.Background(), decoded)
		return responseMsg{resp: resp, err: err}
	}
}

// Update handles key presses and router responses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case responseMsg:
		return m.applyResponse(msg)

	case spinner.TickMsg:
		if m.phase != phaseSweeping {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseSelect:
		return m.handleSelectKey(msg)
	case phaseConfirm:
		return m.handleConfirmKey(msg)
	case phaseReport, phaseNotice, phaseError:
		// Any key leaves a terminal screen.
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m Model) handleSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.vm.Categories)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		cat := m.vm.Categories[m.cursor]
		action := token.ActionAddCategory
		if m.vm.Chosen[cat.ID] {
			action = token.ActionRemoveCategory
		}
		next := token.Token{
			Action:     action,
			RecordID:   m.vm.RecordID,
			CategoryID: cat.ID,
		}.WithHistory(m.current)
		m.current = next
		return m, m.dispatch(next)

	case key.Matches(msg, m.keys.SelectAll):
		next := token.Token{
			Action:   token.ActionSelectAll,
			RecordID: m.vm.RecordID,
		}.WithHistory(m.current)
		m.current = next
		return m, m.dispatch(next)

	case key.Matches(msg, m.keys.Confirm):
		next := token.Token{
			Action:   token.ActionRequestDelete,
			RecordID: m.vm.RecordID,
		}.WithHistory(m.current)
		m.current = next
		return m, m.dispatch(next)
	}

	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		next := token.Token{
			Action:   token.ActionConfirmDelete,
			RecordID: m.confirm.RecordID,
		}.WithHistory(m.current)
		m.current = next
		m.phase = phaseSweeping
		return m, tea.Batch(m.spinner.Tick, m.dispatch(next))

	case key.Matches(msg, m.keys.No):
		// Back to the selection view via the token history stack.
		if prev, ok := m.current.Back(); ok && prev.RecordID != 0 {
			m.phase = phaseSelect
			m.current = prev
			return m, nil
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) applyResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.phase = phaseError
		return m, nil
	}

	switch msg.resp.Kind {
	case flow.KindSelection:
		m.vm = msg.resp.Selection
		if m.cursor >= len(m.vm.Categories) {
			m.cursor = len(m.vm.Categories) - 1
		}
		m.phase = phaseSelect
		if m.current.Action == "" {
			m.current = token.Token{Action: token.ActionBrowse}
		}
	case flow.KindConfirm:
		m.confirm = msg.resp.Confirm
		m.phase = phaseConfirm
	case flow.KindReport:
		m.report = msg.resp.Report
		m.phase = phaseReport
	case flow.KindNotice:
		m.notice = msg.resp.Notice
		m.phase = phaseNotice
	}
	return m, nil
}

// View renders the current phase.
func (m Model) View() string {
	switch m.phase {
	case phaseLoading:
		return "Loading categories...\n"

	case phaseSelect:
		return m.viewSelect()

	case phaseConfirm:
		var b strings.Builder
		b.WriteString(cli.RenderConfirm(*m.confirm))
		b.WriteString(cli.SubtleStyle.Render("y: delete   n: back   q: quit"))
		b.WriteString("\n")
		return b.String()

	case phaseSweeping:
		return fmt.Sprintf("%s Deleting listings...\n", m.spinner.View())

	case phaseReport:
		return cli.RenderReport(m.report) + cli.SubtleStyle.Render("press any key to exit") + "\n"

	case phaseNotice:
		return cli.FormatWarning(m.notice) + "\n" + cli.SubtleStyle.Render("press any key to exit") + "\n"

	case phaseError:
		return cli.FormatError(m.err.Error()) + "\n"
	}
	return ""
}

func (m Model) viewSelect() string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle("Delete listings"))
	b.WriteString("\n")

	for i, cat := range m.vm.Categories {
		cursor := "  "
		if i == m.cursor {
			cursor = cli.CursorStyle.Render("> ")
		}
		row := fmt.Sprintf("[ ] %s", cat.Name)
		if m.vm.Chosen[cat.ID] {
			row = cli.ChosenStyle.Render(fmt.Sprintf("[x] %s", cat.Name))
		}
		b.WriteString(cursor + row + "\n")
	}

	b.WriteString("\n")
	b.WriteString(cli.SubtleStyle.Render("space: toggle   a: all   enter: delete chosen   q: quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the interactive selection flow and blocks until it exits.
func Run(router *flow.Router) error {
	program := tea.NewProgram(NewModel(router))
	_, err := program.Run()
	return err
}
