package interval

type SelectionState int

const (
	Idle SelectionState = iota
	FilmSelected
	GameSelected
	BothSelected
)

func (s SelectionState) String() string {
	switch s {
	case FilmSelected:
		return "film selected"
	case GameSelected:
		return "game selected"
	case BothSelected:
		return "both selected"
	default:
		return "idle"
	}
}

// Selection holds at most one pending row per list until a match or unmatch
// consumes it.
type Selection struct {
	film, game int
	hasFilm    bool
	hasGame    bool
}

func (s *Selection) SelectFilm(i int) {
	s.film, s.hasFilm = i, true
}

func (s *Selection) SelectGame(i int) {
	s.game, s.hasGame = i, true
}

func (s *Selection) Film() (int, bool) { return s.film, s.hasFilm }
func (s *Selection) Game() (int, bool) { return s.game, s.hasGame }

func (s *Selection) State() SelectionState {
	switch {
	case s.hasFilm && s.hasGame:
		return BothSelected
	case s.hasFilm:
		return FilmSelected
	case s.hasGame:
		return GameSelected
	default:
		return Idle
	}
}

func (s *Selection) Pair() (film, game int, ok bool) {
	return s.film, s.game, s.hasFilm && s.hasGame
}

func (s *Selection) Clear() {
	*s = Selection{}
}

// Action is a confirm command that consumes a full selection.
type Action int

const (
	ActionMatch Action = iota
	ActionUnmatch
)

func (a Action) String() string {
	if a == ActionUnmatch {
		return "unmatch"
	}
	return "match"
}

// Apply runs the action on the selected pair. It reports false without
// touching anything unless both rows are selected. The selection is cleared
// only when the index accepts the change.
func (s *Selection) Apply(x *Index, a Action) (bool, error) {
	filmIdx, gameIdx, ok := s.Pair()
	if !ok {
		return false, nil
	}
	film, ok := x.Film().At(filmIdx)
	if !ok {
		return false, ErrUnknownInterval
	}
	game, ok := x.Game().At(gameIdx)
	if !ok {
		return false, ErrUnknownInterval
	}

	var err error
	switch a {
	case ActionUnmatch:
		err = x.Unlink(film.ID, game.ID)
	default:
		err = x.Link(film.ID, game.ID)
	}
	if err != nil {
		return false, err
	}
	s.Clear()
	return true, nil
}

// Marker is the pending start of an interval being annotated.
type Marker struct {
	start   float64
	pending bool
}

func (m *Marker) MarkStart(t float64) {
	m.start, m.pending = t, true
}

func (m *Marker) Pending() (float64, bool) { return m.start, m.pending }

// MarkEnd closes the pending interval at t, ordering the bounds. It reports
// false when no start was marked.
func (m *Marker) MarkEnd(t float64) (start, end float64, ok bool) {
	if !m.pending {
		return 0, 0, false
	}
	start, end = m.start, t
	if end < start {
		start, end = end, start
	}
	*m = Marker{}
	return start, end, true
}
