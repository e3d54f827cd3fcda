// Package tui renders the interactive today view: scheduled habits for the
// selected day with toggleable completion marks and a live analytics strip.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/state"
)

// changedMsg reports that a state slice was updated.
type changedMsg state.Slice

type Model struct {
	st       *state.Store
	keys     KeyMap
	help     help.Model
	cursor   int
	status   string
	changes  chan state.Slice
	cancels  []func()
	width    int
	height   int
	quitting bool
}

func NewModel(st *state.Store) Model {
	m := Model{
		st:      st,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		changes: make(chan state.Slice, 16),
	}
	for _, slice := range []state.Slice{state.SliceHabits, state.SliceCompletions, state.SliceAnalytics, state.SliceView} {
		slice := slice
		m.cancels = append(m.cancels, st.Subscribe(slice, func() {
			select {
			case m.changes <- slice:
			default:
			}
		}))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return changedMsg(<-m.changes)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case changedMsg:
		// The view reads selectors directly; the message just forces a
		// re-render.
		return m, m.waitForChange()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			for _, cancel := range m.cancels {
				cancel()
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.scheduled())-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Toggle):
			scheduled := m.scheduled()
			if m.cursor < len(scheduled) {
				m.status = ""
				if _, err := m.st.ToggleCompletion(scheduled[m.cursor].ID, m.day()); err != nil {
					m.status = err.Error()
				}
			}

		case key.Matches(msg, m.keys.Prev):
			m.shiftDay(-1)

		case key.Matches(msg, m.keys.Next):
			m.shiftDay(1)

		case key.Matches(msg, m.keys.Today):
			m.status = ""
			if err := m.st.SetSelectedDate(time.Now().Format(constants.DateFormat)); err != nil {
				m.status = err.Error()
			}
			m.cursor = 0
		}
	}
	return m, nil
}

func (m *Model) day() string {
	return m.st.View().SelectedDate
}

func (m *Model) shiftDay(delta int) {
	date, err := time.Parse(constants.DateFormat, m.day())
	if err != nil {
		date = time.Now()
	}
	m.status = ""
	if err := m.st.SetSelectedDate(date.AddDate(0, 0, delta).Format(constants.DateFormat)); err != nil {
		m.status = err.Error()
	}
	m.cursor = 0
}

// scheduled returns the active habits whose schedule covers the selected day.
func (m *Model) scheduled() []models.Habit {
	date, err := time.Parse(constants.DateFormat, m.day())
	if err != nil {
		return nil
	}
	var out []models.Habit
	for _, h := range m.st.ActiveHabits() {
		if h.Schedule.On(date.Weekday()) {
			out = append(out, h)
		}
	}
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	day := m.day()
	date, _ := time.Parse(constants.DateFormat, day)
	header := titleStyle.Render(fmt.Sprintf("%s · %s", day, date.Weekday()))

	completions := make(map[string]models.Completion)
	for _, rec := range m.st.CompletionsOn(day) {
		completions[rec.HabitID] = rec
	}

	scheduled := m.scheduled()
	var rows []string
	if len(scheduled) == 0 {
		rows = append(rows, dimStyle.Render("  nothing scheduled"))
	}
	for i, h := range scheduled {
		mark := "○"
		style := dimStyle
		if rec, ok := completions[h.ID]; ok {
			if rec.Completed {
				mark = "✓"
				style = doneStyle
			}
			switch m.st.EntityStatus(rec.ID) {
			case state.StatusPending:
				style = pendingStyle
			case state.StatusFailed:
				mark = "!"
				style = failedStyle
			}
		}

		line := fmt.Sprintf("%s %s %s", mark, h.Icon, h.Name)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = style.Render("  " + line)
		}
		rows = append(rows, line)
	}

	a := m.st.Analytics()
	stats := statsStyle.Render(fmt.Sprintf(
		"streak %d · best %d · weekly goal %.0f%% · rate %.0f%%",
		a.CurrentStreak, a.LongestStreak, a.WeeklyGoalProgress, a.CompletionRate))

	sections := []string{
		header,
		"",
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		"",
		stats,
	}
	if m.status != "" {
		sections = append(sections, failedStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
