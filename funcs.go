package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrMissingInputFiles = errors.New("no control or reference video found")

var validExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".m4v"}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func pollCmd(idx int, p Player) tea.Cmd {
	return func() tea.Msg {
		st, err := p.Status()
		return statusMsg{player: idx, status: st, err: err}
	}
}

func isVideo(path string) bool {
	return slices.Contains(validExtensions, strings.ToLower(filepath.Ext(path)))
}

// discoverMedia lists videos in dir whose name starts with prefix, sorted.
func discoverMedia(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !isVideo(e.Name()) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	return found, nil
}

// resolveMedia returns the control and reference videos, taken from args when
// given and discovered by prefix in dir otherwise.
func resolveMedia(args []string, dir, controlPrefix, referencePrefix string) (string, string, error) {
	if len(args) == 2 {
		for _, path := range args {
			if _, err := os.Stat(path); err != nil {
				return "", "", fmt.Errorf("file '%s' does not exist: %w", path, err)
			}
			if !isVideo(path) {
				return "", "", fmt.Errorf("file '%s' is not a valid video file", path)
			}
		}
		return filepath.Clean(args[0]), filepath.Clean(args[1]), nil
	}

	controls, err := discoverMedia(dir, controlPrefix)
	if err != nil {
		return "", "", err
	}
	references, err := discoverMedia(dir, referencePrefix)
	if err != nil {
		return "", "", err
	}
	if len(controls) == 0 || len(references) == 0 {
		return "", "", fmt.Errorf("%w: want %s* and %s* (%s) in %s",
			ErrMissingInputFiles, controlPrefix, referencePrefix, strings.Join(validExtensions, ", "), dir)
	}
	return controls[0], references[0], nil
}

func styleOutput(statuses []string) string {
	var styledStatuses []string
	for i, status := range statuses {
		bullet := "├"
		if i == len(statuses)-1 {
			bullet = "└"
		}
		styledStatuses = append(styledStatuses, BulletStyle.Render(bullet)+TextStyle.Render(status))
	}
	return strings.Join(styledStatuses, "\n") + "\n"
}

func checkDependency(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
