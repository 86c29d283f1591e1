package interval

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestLoadStore_AssignsIDsInStartOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.csv")
	writeFile(t, path, "start,end\n00:10,00:20\n01:00,01:10\n")

	s, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	want := []Interval{
		{ID: 0, Start: 10, End: 20},
		{ID: 1, Start: 60, End: 70},
	}
	for i, w := range want {
		got, ok := s.At(i)
		if !ok || got != w {
			t.Fatalf("At(%d) = %+v, %v; want %+v", i, got, ok, w)
		}
	}
}

func TestLoadStore_SortsUnorderedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.csv")
	writeFile(t, path, "start,end\n120,130\n5,8\n00:30,00:20\n")

	s, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	all := s.All()
	starts := []float64{5, 20, 120}
	for i, iv := range all {
		if iv.ID != i {
			t.Errorf("interval %d has id %d", i, iv.ID)
		}
		if iv.Start != starts[i] {
			t.Errorf("interval %d start = %v, want %v", i, iv.Start, starts[i])
		}
		if iv.Start > iv.End {
			t.Errorf("interval %d not ordered: %+v", i, iv)
		}
	}
}

func TestLoadStore_MissingFile(t *testing.T) {
	s, err := LoadStore(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestLoadStore_MalformedRow(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{name: "bad time", content: "start,end\n00:10,00:20\nsoon,00:30\n", line: 3},
		{name: "missing field", content: "start,end\n00:10\n", line: 2},
		{name: "bad header", content: "begin,finish\n00:10,00:20\n", line: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "film.csv")
			writeFile(t, path, tc.content)

			_, err := LoadStore(path)
			if !errors.Is(err, ErrMalformedRow) {
				t.Fatalf("error = %v, want ErrMalformedRow", err)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("error %T is not *RowError", err)
			}
			if rowErr.Line != tc.line {
				t.Fatalf("Line = %d, want %d", rowErr.Line, tc.line)
			}
		})
	}
}

func TestAppend_SwapsReversedBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	s, err := OpenAppendStore(path)
	if err != nil {
		t.Fatalf("OpenAppendStore: %v", err)
	}
	defer s.Close()

	pairs := [][2]float64{{30, 10}, {5, 5}, {100, 40.5}}
	for _, p := range pairs {
		iv, err := s.Append(p[0], p[1])
		if err != nil {
			t.Fatalf("Append(%v, %v): %v", p[0], p[1], err)
		}
		if iv.Start > iv.End {
			t.Fatalf("Append(%v, %v) stored %+v", p[0], p[1], iv)
		}
	}

	got, _ := s.At(0)
	if got.Start != 10 || got.End != 30 {
		t.Fatalf("first interval = %+v, want 10-30", got)
	}
}

func TestAppend_PersistsRowsAndIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	s, err := OpenAppendStore(path)
	if err != nil {
		t.Fatalf("OpenAppendStore: %v", err)
	}

	first, _ := s.Append(65, 70)
	second, _ := s.Append(3725, 3730)
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", first.ID, second.ID)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "start,end\n01:05,01:10\n1:02:05,1:02:10\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}
}

func TestOpenAppendStore_ContinuesExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	writeFile(t, path, "start,end\n00:10,00:20")

	s, err := OpenAppendStore(path)
	if err != nil {
		t.Fatalf("OpenAppendStore: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	iv, err := s.Append(30, 40)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if iv.ID != 1 {
		t.Fatalf("ID = %d, want 1", iv.ID)
	}
	s.Close()

	got := readFile(t, path)
	if strings.Count(got, "start,end") != 1 {
		t.Fatalf("header repeated: %q", got)
	}
	if !strings.HasSuffix(got, "00:10,00:20\n00:30,00:40\n") {
		t.Fatalf("unexpected log: %q", got)
	}
}

func TestAppend_ReadOnlyStore(t *testing.T) {
	s := NewMemoryStore([2]float64{1, 2})
	if _, err := s.Append(3, 4); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("error = %v, want ErrReadOnly", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestSaveStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.csv")
	original := NewMemoryStore(
		[2]float64{600, 660},
		[2]float64{10, 20},
		[2]float64{3725, 3800},
		[2]float64{10, 15},
	)

	if err := saveStore(path, original.All()); err != nil {
		t.Fatalf("saveStore: %v", err)
	}
	first, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if err := saveStore(path, first.All()); err != nil {
		t.Fatalf("saveStore: %v", err)
	}
	second, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	a, b := first.All(), second.All()
	if len(a) != 4 || len(a) != len(b) {
		t.Fatalf("lengths %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("interval %d: %+v != %+v", i, a[i], b[i])
		}
	}
	if a[0].Start != 10 || a[0].End != 20 || a[1].End != 15 {
		t.Fatalf("stable order lost: %+v", a)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFindByBounds(t *testing.T) {
	s := NewMemoryStore([2]float64{10, 20}, [2]float64{60, 70})

	iv, ok := s.FindByBounds(60, 70)
	if !ok || iv.ID != 1 {
		t.Fatalf("FindByBounds(60, 70) = %+v, %v", iv, ok)
	}
	if _, ok := s.FindByBounds(60, 71); ok {
		t.Fatal("FindByBounds(60, 71) found an interval")
	}
}
