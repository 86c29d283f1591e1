package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/aschmelyun/scenematch/internal/interval"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (i item) FilterValue() string { return i.iv.String() }

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}
	mark := " "
	if i.iv.Matched {
		mark = "●"
	}

	str := fmt.Sprintf("%s%3d  %s %s", cursor, i.iv.ID, i.iv.String(), mark)

	fn := ItemStyle.Render
	switch {
	case i.selected:
		fn = SelectedItemStyle.Render
	case i.linked:
		fn = LinkedItemStyle.Render
	}

	fmt.Fprint(w, fn(str))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	lay := m.layout()
	var b strings.Builder

	title := "scenematch · matching"
	if m.mode == config.ModeAnnotate {
		title = "scenematch · annotating"
	}
	b.WriteString(TitleStyle.Render(title))
	if start, pending := m.marker.Pending(); pending {
		b.WriteString("  " + MarkerStyle.Render("● recording from "+interval.FormatTime(start)))
	}
	b.WriteString("\n")

	for i, pv := range m.players {
		b.WriteString(m.playerLine(i, pv))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.mode == config.ModeAnnotate {
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("Intervals (%d) · %s", m.store.Len(), m.store.Path())))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Height(lay.lists[0].h).Render(m.lists[0].View()))
	} else {
		b.WriteString(m.listHeaders(lay))
		b.WriteString("\n")
		columns := make([]string, len(m.lists))
		for i := range m.lists {
			style := lipgloss.NewStyle().Width(lay.lists[i].w).Height(lay.lists[i].h)
			if i > 0 {
				style = style.MarginLeft(columnGap)
			}
			columns[i] = style.Render(m.lists[i].View())
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	}
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m model) playerLine(i int, pv *playerView) string {
	focus := "  "
	if i == m.focus {
		focus = "▶ "
	}
	label := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth).Render(focus + pv.name)

	if pv.disabled != "" {
		return label + ErrorStyle.Render("unavailable: "+pv.disabled)
	}

	st := pv.status
	total := "--:--"
	if st.DurationKnown {
		total = interval.FormatTime(st.Duration)
	}
	state := "▶"
	switch {
	case st.EOF:
		state = "■"
	case st.Paused:
		state = "‖"
	}
	times := TimestampStyle.Render(fmt.Sprintf(" %s %s / %s", state, interval.FormatTime(st.Position), total))

	return label + pv.bar.ViewAs(st.Progress()) + times
}

func (m model) listHeaders(lay layout) string {
	film, game := m.index.Film(), m.index.Game()
	headers := []string{
		fmt.Sprintf("Film (%d, %d matched)", film.Len(), countMatched(film.All())),
		fmt.Sprintf("Game (%d, %d matched)", game.Len(), countMatched(game.All())),
	}
	out := make([]string, len(headers))
	for i, h := range headers {
		style := HeaderStyle
		if i == m.focus {
			style = style.Underline(true)
		}
		block := lipgloss.NewStyle().Width(lay.lists[i].w)
		if i > 0 {
			block = block.MarginLeft(columnGap)
		}
		out[i] = block.Render(style.Render(h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func countMatched(ivs []interval.Interval) int {
	n := 0
	for _, iv := range ivs {
		if iv.Matched {
			n++
		}
	}
	return n
}

func (m model) statusLine() string {
	var parts []string

	if m.mode == config.ModeMatch {
		sel := "film: -"
		if idx, ok := m.selection.Film(); ok {
			if iv, ok := m.index.Film().At(idx); ok {
				sel = "film: " + iv.String()
			}
		}
		gameSel := "game: -"
		if idx, ok := m.selection.Game(); ok {
			if iv, ok := m.index.Game().At(idx); ok {
				gameSel = "game: " + iv.String()
			}
		}
		parts = append(parts, DimTextStyle.Render(sel+" · "+gameSel))
	}

	if len(m.statuses) > 0 {
		last := m.statuses[len(m.statuses)-1]
		if m.errorMsg != "" && last == m.errorMsg {
			parts = append(parts, ErrorStyle.Render(last))
		} else {
			parts = append(parts, SuccessStyle.Render(last))
		}
	}
	return strings.Join(parts, "  ")
}
