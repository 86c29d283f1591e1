// Package mpv drives an mpv process through its JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrNotRunning          = errors.New("mpv is not running")
	ErrPropertyUnavailable = errors.New("mpv property unavailable")
)

const (
	DefaultBinary       = "mpv"
	DefaultStartTimeout = 5 * time.Second
	requestTimeout      = 2 * time.Second
)

// Options describes one player window.
type Options struct {
	Binary       string
	Path         string
	Title        string
	Audio        bool
	Loop         bool
	StartTimeout time.Duration
}

// Status is one polled playback snapshot.
type Status struct {
	Position      float64
	Duration      float64
	DurationKnown bool
	Paused        bool
	EOF           bool
}

// Progress is the playback position as a fraction of the duration.
func (s Status) Progress() float64 {
	if !s.DurationKnown || s.Duration <= 0 {
		return 0
	}
	p := s.Position / s.Duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

type request struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type response struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID *int            `json:"request_id"`
	Event     string          `json:"event"`
}

// Client is a connection to one mpv instance. Requests are serialised.
type Client struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	exited   chan struct{}
	conn     net.Conn
	reader   *bufio.Reader
	socket   string
	tmpDir   string
	nextID   int
	duration float64
	hasDur   bool
	closed   bool
	logger   *slog.Logger
}

// Open starts mpv on opts.Path and connects to its IPC socket.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	if _, err := exec.LookPath(opts.Binary); err != nil {
		return nil, fmt.Errorf("%s not found: %w", opts.Binary, err)
	}

	tmpDir, err := os.MkdirTemp("", "scenematch-mpv-")
	if err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	socket := filepath.Join(tmpDir, "ipc.sock")

	cmd := exec.Command(opts.Binary, buildArgs(opts, socket)...)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start %s: %w", opts.Binary, err)
	}

	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, opts.StartTimeout)
	defer cancel()

	conn, err := waitForSocket(waitCtx, socket, exited)
	if err != nil {
		cmd.Process.Kill()
		<-exited
		os.RemoveAll(tmpDir)
		return nil, err
	}

	c := newClient(conn, logger)
	c.cmd = cmd
	c.exited = exited
	c.socket = socket
	c.tmpDir = tmpDir
	c.logger.Info("mpv started", "path", opts.Path, "pid", cmd.Process.Pid, "audio", opts.Audio, "loop", opts.Loop)
	return c, nil
}

// dial connects to an already running mpv IPC socket.
func dial(socket string, logger *slog.Logger) (*Client, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("dial mpv socket: %w", err)
	}
	c := newClient(conn, logger)
	c.socket = socket
	return c, nil
}

func newClient(conn net.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: logger,
	}
}

func buildArgs(opts Options, socket string) []string {
	args := []string{
		"--idle=yes",
		"--pause",
		"--keep-open=yes",
		"--force-window=yes",
		"--osd-level=1",
		"--input-ipc-server=" + socket,
	}
	if opts.Title != "" {
		args = append(args, "--title="+opts.Title)
	}
	if !opts.Audio {
		args = append(args, "--no-audio")
	}
	if opts.Loop {
		args = append(args, "--loop-file=inf")
	}
	return append(args, "--", opts.Path)
}

func waitForSocket(ctx context.Context, socket string, exited <-chan struct{}) (net.Conn, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mpv socket not ready: %w", ctx.Err())
		case <-exited:
			return nil, fmt.Errorf("mpv exited before opening its socket: %w", ErrNotRunning)
		case <-ticker.C:
		}
	}
}

// command sends one request and waits for the reply with the same id,
// skipping event lines.
func (c *Client) command(args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrNotRunning
	}

	c.nextID++
	id := c.nextID
	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode mpv command: %w", err)
	}

	c.conn.SetDeadline(time.Now().Add(requestTimeout))
	defer c.conn.SetDeadline(time.Time{})

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
		}
		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Debug("skipping unreadable mpv line", "line", string(line), "error", err)
			continue
		}
		if resp.Event != "" || resp.RequestID == nil || *resp.RequestID != id {
			continue
		}
		switch resp.Error {
		case "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, ErrPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv %v: %s", args[0], resp.Error)
		}
	}
}

func (c *Client) getFloat(name string) (float64, error) {
	data, err := c.command("get_property", name)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

func (c *Client) getBool(name string) (bool, error) {
	data, err := c.command("get_property", name)
	if err != nil {
		return false, err
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

func (c *Client) TogglePause() error {
	_, err := c.command("cycle", "pause")
	return err
}

// Position is the current playback time; zero before the file has loaded.
func (c *Client) Position() (float64, error) {
	pos, err := c.getFloat("time-pos")
	if errors.Is(err, ErrPropertyUnavailable) {
		return 0, nil
	}
	return pos, err
}

// Duration reports false while mpv does not know the length yet.
func (c *Client) Duration() (float64, bool, error) {
	c.mu.Lock()
	if c.hasDur {
		d := c.duration
		c.mu.Unlock()
		return d, true, nil
	}
	c.mu.Unlock()

	d, err := c.getFloat("duration")
	if errors.Is(err, ErrPropertyUnavailable) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if d <= 0 {
		return 0, false, nil
	}

	c.mu.Lock()
	c.duration, c.hasDur = d, true
	c.mu.Unlock()
	return d, true, nil
}

// SeekSecond jumps to sec, clamped to the media length. It does nothing
// while the duration is unknown.
func (c *Client) SeekSecond(sec float64) error {
	d, ok, err := c.Duration()
	if err != nil || !ok {
		return err
	}
	sec = max(0, min(sec, d))
	_, err = c.command("seek", sec, "absolute")
	return err
}

// SeekRatio jumps to ratio of the media length, clamped to [0, 1].
func (c *Client) SeekRatio(ratio float64) error {
	d, ok, err := c.Duration()
	if err != nil || !ok {
		return err
	}
	ratio = max(0, min(ratio, 1))
	_, err = c.command("seek", d*ratio, "absolute")
	return err
}

// Skip moves the position by delta seconds.
func (c *Client) Skip(delta float64) error {
	pos, err := c.Position()
	if err != nil {
		return err
	}
	return c.SeekSecond(pos + delta)
}

func (c *Client) Status() (Status, error) {
	var st Status
	var err error

	if st.Position, err = c.Position(); err != nil {
		return st, err
	}
	if st.Duration, st.DurationKnown, err = c.Duration(); err != nil {
		return st, err
	}
	if st.Paused, err = c.getBool("pause"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return st, err
	}
	if st.EOF, err = c.getBool("eof-reached"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return st, err
	}
	return st, nil
}

// Close asks mpv to quit and releases the socket. It is safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// Best effort; the process may already be gone.
	c.command("quit")

	c.mu.Lock()
	c.closed = true
	err := c.conn.Close()
	c.mu.Unlock()

	if c.cmd != nil {
		select {
		case <-c.exited:
		case <-time.After(2 * time.Second):
			c.logger.Warn("mpv did not quit, killing", "pid", c.cmd.Process.Pid)
			c.cmd.Process.Kill()
			<-c.exited
		}
	}
	if c.tmpDir != "" {
		os.RemoveAll(c.tmpDir)
	}
	return err
}

// Disabled stands in for a player whose media could not be opened. Every
// control is inert.
type Disabled struct {
	Reason error
}

func (Disabled) TogglePause() error               { return nil }
func (Disabled) SeekSecond(float64) error         { return nil }
func (Disabled) SeekRatio(float64) error          { return nil }
func (Disabled) Skip(float64) error               { return nil }
func (Disabled) Position() (float64, error)       { return 0, nil }
func (Disabled) Duration() (float64, bool, error) { return 0, false, nil }
func (Disabled) Status() (Status, error)          { return Status{}, nil }
func (Disabled) Close() error                     { return nil }
