package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/aschmelyun/scenematch/internal/interval"
	"github.com/aschmelyun/scenematch/internal/logging"
	"github.com/aschmelyun/scenematch/internal/mpv"
)

// app owns everything opened at startup and released on exit.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	players  [2]Player
	names    [2]string
	store    *interval.Store
	index    *interval.Index
	statuses []string
}

func newApp(ctx context.Context, cfg *config.Config, control, reference string, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if err := a.openData(); err != nil {
		return nil, err
	}

	sources := [2]struct {
		path  string
		name  string
		audio bool
		loop  bool
	}{
		{path: control, name: "control", audio: true},
		{path: reference, name: "reference", loop: true},
	}
	for i, src := range sources {
		a.names[i] = filepath.Base(src.path)
		plog := logging.WithSource(logging.WithComponent(logger, "mpv"), src.name)
		client, err := mpv.Open(ctx, mpv.Options{
			Binary: cfg.MpvBinary,
			Path:   src.path,
			Title:  fmt.Sprintf("%s - %s", src.name, a.names[i]),
			Audio:  src.audio,
			Loop:   src.loop,
		}, plog)
		if err != nil {
			plog.Error("media open failed, player disabled", "path", src.path, "error", err)
			a.players[i] = mpv.Disabled{Reason: err}
			a.statuses = append(a.statuses, fmt.Sprintf("Could not open %s: %v", a.names[i], err))
			continue
		}
		a.players[i] = client
	}

	return a, nil
}

func (a *app) openData() error {
	dlog := logging.WithComponent(a.logger, "store")

	if a.cfg.Mode == config.ModeAnnotate {
		store, err := interval.OpenAppendStore(a.cfg.AnnotateLog)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", a.cfg.AnnotateLog, err)
		}
		a.store = store
		dlog.Info("annotation log opened", "path", a.cfg.AnnotateLog, "intervals", store.Len())
		a.statuses = append(a.statuses, fmt.Sprintf("Appending intervals to %s (%d loaded).", a.cfg.AnnotateLog, store.Len()))
		return nil
	}

	film, err := interval.LoadStore(a.cfg.FilmLog)
	if err != nil {
		return fmt.Errorf("failed to load film intervals: %w", err)
	}
	game, err := interval.LoadStore(a.cfg.GameLog)
	if err != nil {
		return fmt.Errorf("failed to load game intervals: %w", err)
	}
	index, report, err := interval.LoadIndex(film, game, a.cfg.MatchLog, dlog)
	if err != nil {
		return fmt.Errorf("failed to load matches: %w", err)
	}
	a.index = index

	dlog.Info("matching data loaded",
		"film", film.Len(),
		"game", game.Len(),
		"match_rows", report.Rows,
		"linked", report.Linked,
		"duplicates", report.Duplicates,
		"unresolved", len(report.Unresolved),
	)
	a.statuses = append(a.statuses, fmt.Sprintf("Loaded %d film and %d game intervals, %d matches.", film.Len(), game.Len(), index.Len()))
	if n := len(report.Unresolved); n > 0 {
		a.statuses = append(a.statuses, fmt.Sprintf("Skipped %d match rows that no longer resolve (see %s).", n, a.cfg.LogFile))
	}
	return nil
}

// Close flushes the logs and stops both players.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range a.players {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		a.logger.Warn("shutdown finished with errors", "error", err)
	}
	return err
}
