package main

import (
	"fmt"

	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/aschmelyun/scenematch/internal/interval"
	"github.com/aschmelyun/scenematch/internal/logging"
	"github.com/aschmelyun/scenematch/internal/mpv"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	labelWidth = 16
	timeWidth  = 18
	columnGap  = 2
	maxLines   = 5
)

func newModel(a *app, width, height int) model {
	m := model{
		mode:     a.cfg.Mode,
		logger:   logging.WithComponent(a.logger, "ui"),
		tick:     a.cfg.TickInterval(),
		skip:     a.cfg.SkipSeconds,
		keys:     newKeyMap(a.cfg.Mode),
		help:     help.New(),
		index:    a.index,
		store:    a.store,
		statuses: a.statuses,
		width:    width,
		height:   height,
	}

	for i, p := range a.players {
		pv := &playerView{
			name:   a.names[i],
			player: p,
			bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		}
		if d, ok := p.(mpv.Disabled); ok {
			pv.disabled = "unavailable"
			if d.Reason != nil {
				pv.disabled = d.Reason.Error()
			}
		}
		m.players[i] = pv
	}

	n := 2
	if m.mode == config.ModeAnnotate {
		n = 1
	}
	for i := 0; i < n; i++ {
		l := list.New(nil, itemDelegate{}, 0, 0)
		l.SetShowTitle(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.SetShowHelp(false)
		l.SetShowPagination(false)
		l.DisableQuitKeybindings()
		m.lists = append(m.lists, l)
	}

	m.resize()
	m.refreshLists()
	return m
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		for i, pv := range m.players {
			if pv.polling || pv.disabled != "" {
				continue
			}
			pv.polling = true
			cmds = append(cmds, pollCmd(i, pv.player))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		pv := m.players[msg.player]
		pv.polling = false
		if msg.err != nil {
			if msg.err.Error() != pv.lastErr {
				m.logger.Warn("playback poll failed", "player", pv.name, "error", msg.err)
			}
			pv.lastErr = msg.err.Error()
			return m, nil
		}
		pv.lastErr = ""
		pv.status = msg.status
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		m.focus = (m.focus + 1) % len(m.players)
		return m, nil

	case key.Matches(msg, m.keys.Play):
		m.control(m.focus, "play/pause", func(p Player) error { return p.TogglePause() })
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.control(m.focus, "skip back", func(p Player) error { return p.Skip(-m.skip) })
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		m.control(m.focus, "skip forward", func(p Player) error { return p.Skip(m.skip) })
		return m, nil

	case key.Matches(msg, m.keys.Seek):
		ratio := float64(msg.Runes[0]-'0') / 10
		m.control(m.focus, "seek", func(p Player) error { return p.SeekRatio(ratio) })
		return m, nil

	case key.Matches(msg, m.keys.Select):
		m.selectRow(m.activeList(), m.lists[m.activeList()].Index())
		return m, nil

	case key.Matches(msg, m.keys.Primary):
		if m.mode == config.ModeAnnotate {
			m.markStart()
		} else {
			m.applySelection(interval.ActionMatch)
		}
		return m, nil

	case key.Matches(msg, m.keys.Second):
		if m.mode == config.ModeAnnotate {
			m.markEnd()
		} else {
			m.applySelection(interval.ActionUnmatch)
		}
		return m, nil
	}

	var cmd tea.Cmd
	li := m.activeList()
	m.lists[li], cmd = m.lists[li].Update(msg)
	return m, cmd
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		for i := range m.lists {
			m.lists[i].CursorUp()
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		for i := range m.lists {
			m.lists[i].CursorDown()
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	lay := m.layout()
	for i, r := range lay.bars {
		if r.contains(msg.X, msg.Y) && r.w > 0 {
			ratio := float64(msg.X-r.x) / float64(r.w)
			m.focus = i
			m.control(i, "seek", func(p Player) error { return p.SeekRatio(ratio) })
			return m, nil
		}
	}
	for i, r := range lay.lists {
		if idx, ok := m.hitRow(i, r, msg.X, msg.Y); ok {
			m.lists[i].Select(idx)
			m.selectRow(i, idx)
			return m, nil
		}
	}
	return m, nil
}

// hitRow maps a pointer position to an item index in list li.
func (m model) hitRow(li int, r rect, x, y int) (int, bool) {
	if !r.contains(x, y) {
		return 0, false
	}
	l := m.lists[li]
	row := (y - r.y) / (itemDelegate{}).Height()
	idx := l.Paginator.Page*l.Paginator.PerPage + row
	if idx < 0 || idx >= len(l.Items()) {
		return 0, false
	}
	return idx, true
}

func (m model) activeList() int {
	if len(m.lists) == 1 {
		return 0
	}
	return m.focus
}

// listPlayer is the player seeked when a row of list li is chosen.
func listPlayer(li int) int {
	if li == gameList {
		return referencePlayer
	}
	return controlPlayer
}

func (m *model) selectRow(li, idx int) {
	var iv interval.Interval
	var ok bool

	switch {
	case m.mode == config.ModeAnnotate:
		iv, ok = m.store.At(idx)
	case li == gameList:
		iv, ok = m.index.Game().At(idx)
		if ok {
			m.selection.SelectGame(idx)
		}
	default:
		iv, ok = m.index.Film().At(idx)
		if ok {
			m.selection.SelectFilm(idx)
		}
	}
	if !ok {
		return
	}

	pi := listPlayer(li)
	m.focus = li
	m.control(pi, "seek", func(p Player) error { return p.SeekSecond(iv.Start) })
	m.refreshLists()
}

func (m *model) applySelection(action interval.Action) {
	filmIdx, gameIdx, ok := m.selection.Pair()
	if !ok {
		return
	}
	film, _ := m.index.Film().At(filmIdx)
	game, _ := m.index.Game().At(gameIdx)

	done, err := m.selection.Apply(m.index, action)
	if err != nil {
		m.logger.Error("match log update failed", "action", action.String(), "film", film.ID, "game", game.ID, "error", err)
		m.fail(fmt.Sprintf("Could not %s: %v", action, err))
		return
	}
	if !done {
		return
	}

	m.logger.Info("selection applied", "action", action.String(), "film", film.ID, "game", game.ID, "links", m.index.Len())
	verb := "Matched"
	if action == interval.ActionUnmatch {
		verb = "Unmatched"
	}
	m.report(fmt.Sprintf("%s film %s with game %s.", verb, film, game))
	m.refreshLists()
}

func (m *model) position(pi int) float64 {
	pv := m.players[pi]
	pos, err := pv.player.Position()
	if err != nil {
		m.logger.Warn("position unavailable, using last polled value", "player", pv.name, "error", err)
		return pv.status.Position
	}
	return pos
}

func (m *model) markStart() {
	t := m.position(controlPlayer)
	m.marker.MarkStart(t)
	m.logger.Info("interval start marked", "at", t)
	m.report("Start marked at " + interval.FormatTime(t) + ".")
}

func (m *model) markEnd() {
	t := m.position(controlPlayer)
	start, end, ok := m.marker.MarkEnd(t)
	if !ok {
		return
	}

	iv, err := m.store.Append(start, end)
	if err != nil {
		m.logger.Error("interval not saved", "start", start, "end", end, "error", err)
		m.fail(fmt.Sprintf("Could not save %s - %s: %v", interval.FormatTime(start), interval.FormatTime(end), err))
		return
	}
	m.logger.Info("interval saved", "id", iv.ID, "start", iv.Start, "end", iv.End)
	m.report("Saved interval " + iv.String() + ".")
	m.refreshLists()
	m.lists[0].Select(iv.ID)
}

// control runs one player command, logging failures without stopping the UI.
func (m *model) control(pi int, what string, fn func(Player) error) {
	pv := m.players[pi]
	if pv.disabled != "" {
		return
	}
	if err := fn(pv.player); err != nil {
		m.logger.Warn("player command failed", "player", pv.name, "command", what, "error", err)
		m.fail(fmt.Sprintf("%s on %s failed: %v", what, pv.name, err))
	}
}

func (m *model) report(status string) {
	m.errorMsg = ""
	m.statuses = append(m.statuses, status)
	if len(m.statuses) > maxLines {
		m.statuses = m.statuses[len(m.statuses)-maxLines:]
	}
}

func (m *model) fail(msg string) {
	m.report(msg)
	m.errorMsg = msg
}

// refreshLists rebuilds the rows from the stores so matched, linked and
// selected flags follow the current state.
func (m *model) refreshLists() {
	if m.mode == config.ModeAnnotate {
		m.lists[0].SetItems(toItems(m.store.All(), nil))
		return
	}

	filmSel, hasFilm := m.selection.Film()
	gameSel, hasGame := m.selection.Game()

	films := toItems(m.index.Film().All(), func(it *item) {
		it.selected = hasFilm && it.iv.ID == filmSel
	})
	games := toItems(m.index.Game().All(), func(it *item) {
		it.selected = hasGame && it.iv.ID == gameSel
		it.linked = hasFilm && m.index.IsLinked(filmSel, it.iv.ID)
	})

	m.lists[filmList].SetItems(films)
	m.lists[gameList].SetItems(games)
}

func toItems(ivs []interval.Interval, decorate func(*item)) []list.Item {
	items := make([]list.Item, len(ivs))
	for i, iv := range ivs {
		it := item{iv: iv}
		if decorate != nil {
			decorate(&it)
		}
		items[i] = it
	}
	return items
}

func (m *model) resize() {
	lay := m.layout()
	for i := range m.lists {
		m.lists[i].SetSize(lay.lists[i].w, lay.lists[i].h)
	}
	for i, pv := range m.players {
		pv.bar.Width = lay.bars[i].w
	}
	m.help.Width = m.width
}

// layout places the UI regions. View renders in the same order:
// title, one line per player, blank, list headers, list rows, blank,
// status, help.
func (m model) layout() layout {
	var lay layout

	barWidth := max(m.width-labelWidth-timeWidth, 10)
	for i := range lay.bars {
		lay.bars[i] = rect{x: labelWidth, y: 1 + i, w: barWidth, h: 1}
	}

	top := 5
	listHeight := max(m.height-top-3, 3)
	if len(m.lists) == 1 {
		lay.lists = []rect{{x: 0, y: top, w: max(m.width, 20), h: listHeight}}
		return lay
	}

	colWidth := max((m.width-columnGap)/2, 20)
	lay.lists = []rect{
		{x: 0, y: top, w: colWidth, h: listHeight},
		{x: colWidth + columnGap, y: top, w: colWidth, h: listHeight},
	}
	return lay
}
