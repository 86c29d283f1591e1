// Package config resolves scenematch settings. Values come from built-in
// defaults, then a .env file, then SCENEMATCH_* environment variables, then
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeAnnotate Mode = "annotate"
	ModeMatch    Mode = "match"
)

const (
	// Default values
	DefaultMode            = ModeMatch
	DefaultFilmLog         = "film.csv"
	DefaultGameLog         = "game.csv"
	DefaultMatchLog        = "matches.csv"
	DefaultAnnotateLog     = "output.csv"
	DefaultLogFile         = "scenematch.log"
	DefaultLogLevel        = "info"
	DefaultFrameRate       = 30
	DefaultSkipSeconds     = 30
	DefaultMpvBinary       = "mpv"
	DefaultControlPrefix   = "control_"
	DefaultReferencePrefix = "reference_"
	DefaultEnvFile         = ".env"

	// Environment variable names
	EnvMode            = "SCENEMATCH_MODE"
	EnvFilmLog         = "SCENEMATCH_FILM_LOG"
	EnvGameLog         = "SCENEMATCH_GAME_LOG"
	EnvMatchLog        = "SCENEMATCH_MATCH_LOG"
	EnvAnnotateLog     = "SCENEMATCH_ANNOTATE_LOG"
	EnvLogFile         = "SCENEMATCH_LOG_FILE"
	EnvLogLevel        = "SCENEMATCH_LOG_LEVEL"
	EnvFrameRate       = "SCENEMATCH_FRAME_RATE"
	EnvSkipSeconds     = "SCENEMATCH_SKIP_SECONDS"
	EnvMpvBinary       = "SCENEMATCH_MPV"
	EnvControlPrefix   = "SCENEMATCH_CONTROL_PREFIX"
	EnvReferencePrefix = "SCENEMATCH_REFERENCE_PREFIX"
)

var ErrHelp = flag.ErrHelp

// Config is the resolved configuration for one run.
type Config struct {
	Mode            Mode
	FilmLog         string
	GameLog         string
	MatchLog        string
	AnnotateLog     string
	LogFile         string
	LogLevel        string
	FrameRate       int
	SkipSeconds     float64
	MpvBinary       string
	ControlPrefix   string
	ReferencePrefix string

	// Media holds positional control and reference paths, if given.
	Media   []string
	Version bool
}

func defaults() *Config {
	return &Config{
		Mode:            DefaultMode,
		FilmLog:         DefaultFilmLog,
		GameLog:         DefaultGameLog,
		MatchLog:        DefaultMatchLog,
		AnnotateLog:     DefaultAnnotateLog,
		LogFile:         DefaultLogFile,
		LogLevel:        DefaultLogLevel,
		FrameRate:       DefaultFrameRate,
		SkipSeconds:     DefaultSkipSeconds,
		MpvBinary:       DefaultMpvBinary,
		ControlPrefix:   DefaultControlPrefix,
		ReferencePrefix: DefaultReferencePrefix,
	}
}

// Load resolves the configuration. envFile may be empty to skip the .env
// lookup; a missing .env file is not an error. usage receives flag help.
func Load(args []string, envFile string, usage func(fs *flag.FlagSet)) (*Config, error) {
	cfg := defaults()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("scenematch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mode := string(cfg.Mode)
	fs.StringVar(&mode, "mode", mode, "annotate or match")
	fs.StringVar(&cfg.FilmLog, "film", cfg.FilmLog, "film interval log")
	fs.StringVar(&cfg.GameLog, "game", cfg.GameLog, "game interval log")
	fs.StringVar(&cfg.MatchLog, "matches", cfg.MatchLog, "match log")
	fs.StringVar(&cfg.AnnotateLog, "out", cfg.AnnotateLog, "interval log written in annotate mode")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "diagnostic log file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.IntVar(&cfg.FrameRate, "fps", cfg.FrameRate, "playback polling rate")
	fs.Float64Var(&cfg.SkipSeconds, "skip", cfg.SkipSeconds, "seconds moved by left/right")
	fs.StringVar(&cfg.MpvBinary, "mpv", cfg.MpvBinary, "mpv executable")
	fs.BoolVar(&cfg.Version, "version", false, "show version info")
	if usage != nil {
		fs.Usage = func() { usage(fs) }
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Mode = Mode(strings.ToLower(mode))
	cfg.Media = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = Mode(strings.ToLower(v))
	}
	setString(&c.FilmLog, EnvFilmLog)
	setString(&c.GameLog, EnvGameLog)
	setString(&c.MatchLog, EnvMatchLog)
	setString(&c.AnnotateLog, EnvAnnotateLog)
	setString(&c.LogFile, EnvLogFile)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.MpvBinary, EnvMpvBinary)
	setString(&c.ControlPrefix, EnvControlPrefix)
	setString(&c.ReferencePrefix, EnvReferencePrefix)

	if v := os.Getenv(EnvFrameRate); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFrameRate, err)
		}
		c.FrameRate = fps
	}
	if v := os.Getenv(EnvSkipSeconds); v != "" {
		skip, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSkipSeconds, err)
		}
		c.SkipSeconds = skip
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAnnotate, ModeMatch:
	default:
		return fmt.Errorf("invalid mode %q: want %s or %s", c.Mode, ModeAnnotate, ModeMatch)
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return fmt.Errorf("invalid frame rate %d: must be between 1 and 240", c.FrameRate)
	}
	if c.SkipSeconds <= 0 {
		return fmt.Errorf("invalid skip %v: must be positive", c.SkipSeconds)
	}
	if len(c.Media) != 0 && len(c.Media) != 2 {
		return fmt.Errorf("expected a control and a reference video, got %d paths", len(c.Media))
	}
	return nil
}

// TickInterval is the playback polling period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Version information (set at build time via ldflags)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)
