package interval

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// MatchLog is the persisted film/game link log. Appends open and close the
// file each time because Remove replaces it by rename.
type MatchLog struct {
	path string
}

func NewMatchLog(path string) *MatchLog {
	return &MatchLog{path: path}
}

func (l *MatchLog) Path() string { return l.path }

func matchRecord(film, game Interval) []string {
	return []string{
		FormatTime(film.Start),
		FormatTime(film.End),
		FormatTime(game.Start),
		FormatTime(game.End),
	}
}

func (l *MatchLog) Append(film, game Interval) error {
	lw, err := openLogWriter(l.path, MatchHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := lw.write(matchRecord(film, game)); err != nil {
		lw.close()
		return err
	}
	return lw.close()
}

// Remove rewrites the log without the rows whose formatted bounds equal the
// pair's, leaving the first keep of them in place. It returns the number of
// rows dropped.
func (l *MatchLog) Remove(film, game Interval, keep int) (int, error) {
	records, err := readLog(l.path, MatchHeader)
	if err != nil {
		return 0, err
	}
	if records == nil {
		return 0, nil
	}

	target := matchRecord(film, game)
	kept := make([][]string, 0, len(records))
	removed, seen := 0, 0
	for _, rec := range records {
		if sameRecord(rec.fields, target) {
			seen++
			if seen > keep {
				removed++
				continue
			}
		}
		kept = append(kept, rec.fields)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := writeLogAtomic(l.path, MatchHeader, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func sameRecord(fields, target []string) bool {
	for i := range target {
		if strings.TrimSpace(fields[i]) != target[i] {
			return false
		}
	}
	return true
}

// Index is the film -> games link relation between two stores. The inverse
// direction is computed by scanning.
type Index struct {
	film  *Store
	game  *Store
	log   *MatchLog
	links map[int]map[int]struct{}
}

// NewIndex returns an empty index. log may be nil for an in-memory index.
func NewIndex(film, game *Store, log *MatchLog) *Index {
	return &Index{
		film:  film,
		game:  game,
		log:   log,
		links: make(map[int]map[int]struct{}),
	}
}

func (x *Index) Film() *Store { return x.film }
func (x *Index) Game() *Store { return x.game }

func (x *Index) check(filmID, gameID int) error {
	if !x.film.Has(filmID) {
		return fmt.Errorf("%w: film %d", ErrUnknownInterval, filmID)
	}
	if !x.game.Has(gameID) {
		return fmt.Errorf("%w: game %d", ErrUnknownInterval, gameID)
	}
	return nil
}

func (x *Index) IsLinked(filmID, gameID int) bool {
	_, ok := x.links[filmID][gameID]
	return ok
}

// Link records the pair and appends one match row. Linking an existing pair
// does nothing.
func (x *Index) Link(filmID, gameID int) error {
	if err := x.check(filmID, gameID); err != nil {
		return err
	}
	if x.IsLinked(filmID, gameID) {
		return nil
	}
	if x.log != nil {
		film, _ := x.film.ByID(filmID)
		game, _ := x.game.ByID(gameID)
		if err := x.log.Append(film, game); err != nil {
			return err
		}
	}
	x.insert(filmID, gameID)
	return nil
}

// Unlink drops the pair and rewrites the match log without its row. Rows
// that other links format to are kept, one per remaining link. Unlinking an
// absent pair does nothing.
func (x *Index) Unlink(filmID, gameID int) error {
	if err := x.check(filmID, gameID); err != nil {
		return err
	}
	if !x.IsLinked(filmID, gameID) {
		return nil
	}
	if x.log != nil {
		film, _ := x.film.ByID(filmID)
		game, _ := x.game.ByID(gameID)
		if _, err := x.log.Remove(film, game, x.sharedRows(filmID, gameID)); err != nil {
			return err
		}
	}

	games := x.links[filmID]
	delete(games, gameID)
	if len(games) == 0 {
		delete(x.links, filmID)
	}
	x.refresh(filmID, gameID)
	return nil
}

// sharedRows counts the other links whose match row formats the same as the
// pair's.
func (x *Index) sharedRows(filmID, gameID int) int {
	film, _ := x.film.ByID(filmID)
	game, _ := x.game.ByID(gameID)
	target := matchRecord(film, game)

	n := 0
	for f, games := range x.links {
		for g := range games {
			if f == filmID && g == gameID {
				continue
			}
			of, _ := x.film.ByID(f)
			og, _ := x.game.ByID(g)
			if sameRecord(matchRecord(of, og), target) {
				n++
			}
		}
	}
	return n
}

func (x *Index) insert(filmID, gameID int) {
	games, ok := x.links[filmID]
	if !ok {
		games = make(map[int]struct{})
		x.links[filmID] = games
	}
	games[gameID] = struct{}{}
	x.refresh(filmID, gameID)
}

// refresh recomputes Matched as "has at least one link" for both sides.
func (x *Index) refresh(filmID, gameID int) {
	x.film.setMatched(filmID, len(x.links[filmID]) > 0)
	x.game.setMatched(gameID, len(x.FilmsLinkedTo(gameID)) > 0)
}

// GamesLinkedTo returns the sorted game ids linked to filmID.
func (x *Index) GamesLinkedTo(filmID int) []int {
	games := x.links[filmID]
	out := make([]int, 0, len(games))
	for id := range games {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// FilmsLinkedTo returns the sorted film ids linked to gameID.
func (x *Index) FilmsLinkedTo(gameID int) []int {
	var out []int
	for filmID, games := range x.links {
		if _, ok := games[gameID]; ok {
			out = append(out, filmID)
		}
	}
	sort.Ints(out)
	if out == nil {
		out = []int{}
	}
	return out
}

// Len is the number of linked pairs.
func (x *Index) Len() int {
	n := 0
	for _, games := range x.links {
		n += len(games)
	}
	return n
}

// UnresolvedRow is a match row whose bounds no longer name exactly one
// interval on each side. Ambiguous is set when a side had several candidates.
type UnresolvedRow struct {
	Line      int
	Fields    []string
	Ambiguous bool
}

type RebuildReport struct {
	Rows       int
	Linked     int
	Duplicates int
	Unresolved []UnresolvedRow
}

// LoadIndex rebuilds the index from the match log at path. Rows that do not
// resolve to a single interval in both stores are reported and skipped.
func LoadIndex(film, game *Store, path string, logger *slog.Logger) (*Index, RebuildReport, error) {
	x := NewIndex(film, game, NewMatchLog(path))
	var report RebuildReport

	records, err := readLog(path, MatchHeader)
	if err != nil {
		return nil, report, err
	}

	for _, rec := range records {
		report.Rows++
		var bounds [4]float64
		for i, field := range rec.fields {
			v, err := ParseTime(field)
			if err != nil {
				return nil, report, &RowError{Path: path, Line: rec.line, Err: err}
			}
			bounds[i] = v
		}

		f, fn := film.findByLoggedBounds(bounds[0], bounds[1])
		g, gn := game.findByLoggedBounds(bounds[2], bounds[3])
		if fn != 1 || gn != 1 {
			ambiguous := fn > 1 || gn > 1
			report.Unresolved = append(report.Unresolved, UnresolvedRow{Line: rec.line, Fields: rec.fields, Ambiguous: ambiguous})
			if logger != nil {
				logger.Warn("dropping unresolved match row",
					"path", path,
					"line", rec.line,
					"row", strings.Join(rec.fields, ","),
					"film_candidates", fn,
					"game_candidates", gn,
					"ambiguous", ambiguous,
				)
			}
			continue
		}

		if x.IsLinked(f.ID, g.ID) {
			report.Duplicates++
			continue
		}
		x.insert(f.ID, g.ID)
		report.Linked++
	}

	return x, report, nil
}
