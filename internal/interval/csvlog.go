package interval

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMalformedRow = errors.New("malformed log row")
	ErrLogWrite     = errors.New("log write failed")
)

var (
	IntervalHeader = []string{"start", "end"}
	MatchHeader    = []string{"film_start", "film_end", "game_start", "game_end"}
)

// RowError locates a row that could not be parsed. It matches both
// ErrMalformedRow and the underlying cause under errors.Is.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %v", e.Path, e.Line, ErrMalformedRow, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

type logRecord struct {
	line   int
	fields []string
}

// readLog returns every data row after checking the header. A missing or
// empty file yields no rows.
func readLog(path string, header []string) ([]logRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records []logRecord
	first := true
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &RowError{Path: path, Line: parseErr.Line, Err: parseErr.Err}
			}
			return nil, fmt.Errorf("read log: %w", err)
		}
		line, _ := r.FieldPos(0)

		if first {
			first = false
			if !headerMatches(fields, header) {
				return nil, &RowError{Path: path, Line: line, Err: fmt.Errorf("unexpected header %q, want %q", strings.Join(fields, ","), strings.Join(header, ","))}
			}
			continue
		}

		if len(fields) != len(header) {
			return nil, &RowError{Path: path, Line: line, Err: fmt.Errorf("got %d fields, want %d", len(fields), len(header))}
		}
		records = append(records, logRecord{line: line, fields: fields})
	}

	return records, nil
}

func headerMatches(fields, header []string) bool {
	if len(fields) != len(header) {
		return false
	}
	for i := range fields {
		name := strings.TrimSpace(strings.TrimPrefix(fields[i], "\ufeff"))
		if !strings.EqualFold(name, header[i]) {
			return false
		}
	}
	return true
}

// logWriter appends rows to a log kept open for the session.
type logWriter struct {
	path string
	f    *os.File
	w    *csv.Writer
}

func openLogWriter(path string, header []string) (*logWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log for append: %w", err)
	}

	lw := &logWriter{path: path, f: f, w: csv.NewWriter(f)}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat log: %w", err)
	}

	if fi.Size() == 0 {
		if err := lw.write(header); err != nil {
			f.Close()
			return nil, err
		}
		return lw, nil
	}

	// A hand-edited file may lack the final newline.
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, fi.Size()-1); err == nil && last[0] != '\n' {
		if _, err := f.Write([]byte("\n")); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrLogWrite, err)
		}
	}

	return lw, nil
}

func (l *logWriter) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLogWrite, l.path, err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLogWrite, l.path, err)
	}
	return nil
}

func (l *logWriter) close() error {
	l.w.Flush()
	flushErr := l.w.Error()
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	if flushErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrLogWrite, l.path, flushErr)
	}
	return nil
}

// writeLogAtomic replaces path with header and records.
func writeLogAtomic(path string, header []string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir: %v", ErrLogWrite, err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open tmp: %v", ErrLogWrite, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: sync tmp: %v", ErrLogWrite, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: close tmp: %v", ErrLogWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename tmp: %v", ErrLogWrite, err)
	}
	return nil
}

func intervalRecord(start, end float64) []string {
	return []string{FormatTime(start), FormatTime(end)}
}
