package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeMatch {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeMatch)
	}
	if cfg.FilmLog != DefaultFilmLog || cfg.GameLog != DefaultGameLog || cfg.MatchLog != DefaultMatchLog {
		t.Errorf("log paths = %q %q %q", cfg.FilmLog, cfg.GameLog, cfg.MatchLog)
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("TickInterval = %v", cfg.TickInterval())
	}
	if len(cfg.Media) != 0 {
		t.Errorf("Media = %v, want none", cfg.Media)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvMode, "ANNOTATE")
	t.Setenv(EnvAnnotateLog, "marks.csv")
	t.Setenv(EnvFrameRate, "60")

	cfg, err := Load(nil, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeAnnotate {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeAnnotate)
	}
	if cfg.AnnotateLog != "marks.csv" {
		t.Errorf("AnnotateLog = %q", cfg.AnnotateLog)
	}
	if cfg.FrameRate != 60 {
		t.Errorf("FrameRate = %d, want 60", cfg.FrameRate)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv(EnvFilmLog, "env-film.csv")

	cfg, err := Load([]string{"-film", "flag-film.csv", "-skip", "5", "control.mp4", "reference.mp4"}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FilmLog != "flag-film.csv" {
		t.Errorf("FilmLog = %q, want flag-film.csv", cfg.FilmLog)
	}
	if cfg.SkipSeconds != 5 {
		t.Errorf("SkipSeconds = %v, want 5", cfg.SkipSeconds)
	}
	if len(cfg.Media) != 2 || cfg.Media[0] != "control.mp4" {
		t.Errorf("Media = %v", cfg.Media)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	os.Unsetenv(EnvMatchLog)
	t.Cleanup(func() { os.Unsetenv(EnvMatchLog) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvMatchLog+"=pairs.csv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(nil, path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MatchLog != "pairs.csv" {
		t.Errorf("MatchLog = %q, want pairs.csv", cfg.MatchLog)
	}
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), ".env"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "unknown mode", args: []string{"-mode", "review"}},
		{name: "zero fps", args: []string{"-fps", "0"}},
		{name: "bad fps env", env: map[string]string{EnvFrameRate: "fast"}},
		{name: "negative skip", args: []string{"-skip", "-1"}},
		{name: "one media path", args: []string{"control.mp4"}},
		{name: "unknown flag", args: []string{"-bogus"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tc.args, "", nil); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_HelpCallsUsage(t *testing.T) {
	called := false
	_, err := Load([]string{"-help"}, "", func(*flag.FlagSet) { called = true })
	if !errors.Is(err, ErrHelp) {
		t.Fatalf("error = %v, want ErrHelp", err)
	}
	if !called {
		t.Fatal("usage not called")
	}
}
