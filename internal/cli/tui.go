package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/explore"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/practice"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func newMoveInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "move › "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	return ti
}

// formatLine renders moves with move numbers, or "start" for none.
func formatLine(moves []string) string {
	if len(moves) == 0 {
		return "start"
	}
	return dataset.Format(moves)
}

// =============================================================================
// ExploreModel - Interactive repertoire browser
// =============================================================================

// ExploreModel is the bubbletea model for browsing a repertoire.
type ExploreModel struct {
	Explorer *explore.Explorer
	Cursor   int
	Status   string // Result of the last typed move

	choices []explore.Choice
	input   textinput.Model
	typing  bool
}

// NewExploreModel creates an explore model at the explorer's cursor.
func NewExploreModel(ex *explore.Explorer) ExploreModel {
	m := ExploreModel{
		Explorer: ex,
		input:    newMoveInput("e4, Nf3 or e2e4; several moves allowed"),
	}
	m.refresh()
	return m
}

func (m *ExploreModel) refresh() {
	m.choices = m.Explorer.AvailableMoves()
	m.Cursor = 0
}

// Choices returns the moves listed at the cursor.
func (m ExploreModel) Choices() []explore.Choice { return m.choices }

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.typing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.typing {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.typing = false
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case "enter":
			m.typing = false
			m.input.Blur()
			text := m.input.Value()
			m.input.SetValue("")
			m.play(text)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	m.Status = ""
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.choices)-1 {
			m.Cursor++
		}
	case "enter", "right", "l":
		if len(m.choices) == 0 {
			return m, nil
		}
		if _, err := m.Explorer.Advance(m.choices[m.Cursor].Move.SAN); err != nil {
			m.Status = err.Error()
			return m, nil
		}
		m.refresh()
	case "left", "h", "backspace":
		if m.Explorer.Back() {
			m.refresh()
		}
	case "r":
		m.Explorer.Reset()
		m.refresh()
	case "/", "m":
		m.typing = true
		return m, m.input.Focus()
	}
	return m, nil
}

// play advances along typed moves from the cursor. On error the cursor
// returns to where it was.
func (m *ExploreModel) play(text string) {
	moves, err := parseMoveArgs([]string{text})
	if err != nil {
		m.Status = err.Error()
		return
	}
	for i, mv := range moves {
		if _, err := m.Explorer.Advance(mv); err != nil {
			for range i {
				m.Explorer.Back()
			}
			m.Status = explainMoveError(err)
			return
		}
	}
	m.refresh()
}

// explainMoveError turns a move error into a status line.
func explainMoveError(err error) string {
	var ime *errors.IllegalMoveError
	if errors.As(err, &ime) && ime.Unexplored {
		return fmt.Sprintf("%s is legal but not in the repertoire", ime.Move)
	}
	return errors.UserMessage(err)
}

func (m ExploreModel) View() string {
	var b strings.Builder
	g := m.Explorer.Graph()
	n := m.Explorer.Current()

	b.WriteString(StyleTitle.Render("Repertoire · " + g.Color().Name()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ play  ← back  / type move  r reset  q quit"))
	b.WriteString("\n\n")

	b.WriteString(StyleHighlight.Render(formatLine(graph.SANs(m.Explorer.Path()))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(n.Position.FEN()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(toMove(g, n) + " · " + plural(n.Leaves(), "line")))
	b.WriteString("\n\n")

	if len(m.choices) == 0 {
		b.WriteString(listNormalStyle.Render("End of line"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, len(m.choices))
		for i, ch := range m.choices {
			cursor := "  "
			if i == m.Cursor {
				cursor = "▸ "
			}
			rows[i] = []string{cursor, ch.Move.SAN, fmt.Sprint(ch.SubtreeSize), fmt.Sprint(ch.Node.Reachable())}
		}
		headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("", "Move", "Lines", "Positions").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				if row == m.Cursor {
					return listSelectedStyle
				}
				return listNormalStyle
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if m.typing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// PracticeModel - Interactive drill
// =============================================================================

// roundRecordedMsg reports the outcome of storing a finished round.
type roundRecordedMsg struct{ err error }

// PracticeModel is the bubbletea model for a practice session.
type PracticeModel struct {
	Session *practice.Session
	Status  string
	Rounds  int // Finished rounds
	Wins    int // Successful rounds

	ctx     context.Context
	store   history.Store
	input   textinput.Model
	pending tea.Cmd // stores a round that ended before the first key
}

// NewPracticeModel creates a practice model and plays the opening computer
// moves of the first round.
func NewPracticeModel(ctx context.Context, ps *practice.Session, store history.Store) PracticeModel {
	if store == nil {
		store = history.NullStore{}
	}
	m := PracticeModel{
		Session: ps,
		ctx:     ctx,
		store:   store,
		input:   newMoveInput("your move"),
	}
	m.input.Focus()
	m.advance()
	if ps.State().Done() {
		m.pending = m.finish()
	}
	return m
}

// advance runs computer turns until the user is to move or the round ends.
func (m *PracticeModel) advance() {
	for m.Session.State() == practice.ComputerTurn {
		if _, _, err := m.Session.Step(); err != nil {
			m.Status = err.Error()
			return
		}
	}
}

// finish counts a finished round and returns the command storing it.
func (m *PracticeModel) finish() tea.Cmd {
	m.Rounds++
	if m.Session.State() == practice.Success {
		m.Wins++
	}
	m.input.Blur()
	rec := history.FromRound(m.Session.Round(), time.Now())
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return roundRecordedMsg{err: store.Record(ctx, rec)}
	}
}

// submit plays text as the user's move.
func (m PracticeModel) submit(text string) (PracticeModel, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}
	if _, err := m.Session.Guess(text); err != nil {
		m.Status = explainMoveError(err)
		return m, nil
	}
	m.Status = ""
	m.input.SetValue("")
	m.advance()
	if m.Session.State().Done() {
		return m, m.finish()
	}
	return m, nil
}

func (m PracticeModel) Init() tea.Cmd {
	if m.pending != nil {
		return m.pending
	}
	return textinput.Blink
}

func (m PracticeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roundRecordedMsg:
		if msg.err != nil {
			m.Status = "could not save round: " + msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.Session.State().Done() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "enter", "n", "r":
				m.Session.Restart()
				m.Status = ""
				m.advance()
				if m.Session.State().Done() {
					return m, m.finish()
				}
				return m, m.input.Focus()
			}
			return m, nil
		}
		if msg.String() == "enter" {
			return m.submit(m.input.Value())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PracticeModel) View() string {
	var b strings.Builder
	ps := m.Session
	n := ps.Current()

	b.WriteString(StyleTitle.Render("Practice"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  round %d · %d/%d solved", m.Rounds+boolInt(!ps.State().Done()), m.Wins, m.Rounds)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎ play  esc quit"))
	b.WriteString("\n\n")

	round := ps.Round()
	line := append(round.Start, round.Moves...)
	b.WriteString(StyleHighlight.Render(formatLine(line)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(n.Position.FEN()))
	b.WriteString("\n\n")

	switch ps.State() {
	case practice.UserTurn:
		b.WriteString(listNormalStyle.Render(fmt.Sprintf("You play %s. Your move?", round.Color.Name())))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case practice.Success:
		b.WriteString(StyleSuccess.Render(iconSuccess + " End of line reached"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("⏎ next round  q quit"))
		b.WriteString("\n")
	case practice.Failed:
		b.WriteString(StyleError.Render(fmt.Sprintf("%s %s is not in your repertoire", iconError, round.Guess)))
		b.WriteString("\n")
		b.WriteString(listNormalStyle.Render("Prepared: " + strings.Join(round.Expected, ", ")))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("⏎ next round  q quit"))
		b.WriteString("\n")
	}

	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
