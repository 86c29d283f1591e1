package main

import (
	"log/slog"
	"time"

	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/aschmelyun/scenematch/internal/interval"
	"github.com/aschmelyun/scenematch/internal/mpv"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
)

// Player is the playback surface the UI drives. *mpv.Client and
// mpv.Disabled implement it.
type Player interface {
	TogglePause() error
	SeekSecond(sec float64) error
	SeekRatio(ratio float64) error
	Skip(delta float64) error
	Position() (float64, error)
	Duration() (float64, bool, error)
	Status() (mpv.Status, error)
	Close() error
}

type tickMsg time.Time

type statusMsg struct {
	player int
	status mpv.Status
	err    error
}

type playerView struct {
	name     string
	player   Player
	status   mpv.Status
	bar      progress.Model
	polling  bool
	disabled string
	lastErr  string
}

const (
	controlPlayer   = 0
	referencePlayer = 1
)

const (
	filmList = 0
	gameList = 1
)

type model struct {
	mode     config.Mode
	logger   *slog.Logger
	tick     time.Duration
	skip     float64
	keys     keyMap
	help     help.Model
	players  [2]*playerView
	lists    []list.Model
	focus    int
	width    int
	height   int
	quitting bool
	statuses []string
	errorMsg string

	// match mode
	index     *interval.Index
	selection interval.Selection

	// annotate mode
	store  *interval.Store
	marker interval.Marker
}

type item struct {
	iv       interval.Interval
	selected bool
	linked   bool
}

type itemDelegate struct{}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type layout struct {
	bars  [2]rect
	lists []rect
}
