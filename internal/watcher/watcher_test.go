package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/cvingest/internal/cache"
	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/fixtures"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/pipeline"
)

type recorder struct {
	mu        sync.Mutex
	ingested  []string
	forgotten []string
}

func (r *recorder) Ingest(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested = append(r.ingested, filepath.Base(path))
}

func (r *recorder) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgotten = append(r.forgotten, filepath.Base(path))
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := append([]string(nil), r.ingested...)
	sort.Strings(in)
	return in, append([]string(nil), r.forgotten...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startWatcher(t *testing.T, dir string, h Handler, opts ...Option) *Watcher {
	t.Helper()
	w := New([]string{dir}, h, append([]Option{WithDebounce(30 * time.Millisecond)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ingestsNewResumes(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec)

	for _, name := range []string{"jane.pdf", "john.docx", "notes.txt", ".~lock.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool {
		in, _ := rec.snapshot()
		return len(in) >= 2
	})
	time.Sleep(100 * time.Millisecond)
	in, _ := rec.snapshot()
	if len(in) != 2 || in[0] != "jane.pdf" || in[1] != "john.docx" {
		t.Errorf("ingested = %v", in)
	}
}

func TestWatcher_debouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec, WithDebounce(200*time.Millisecond))

	path := filepath.Join(dir, "cv.pdf")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	waitFor(t, func() bool {
		in, _ := rec.snapshot()
		return len(in) == 1
	})
	time.Sleep(300 * time.Millisecond)
	if in, _ := rec.snapshot(); len(in) != 1 {
		t.Errorf("ingested %d times, want 1", len(in))
	}
}

func TestWatcher_removeForgets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.docx")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, dir, rec)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, out := rec.snapshot()
		return len(out) == 1 && out[0] == "cv.docx"
	})
}

func TestWatcher_newSubdirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec)

	nested := filepath.Join(dir, "incoming", "2024")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "deep.pdf"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		in, _ := rec.snapshot()
		for _, p := range in {
			if p == "deep.pdf" {
				return true
			}
		}
		return false
	})
}

func TestWatcher_scanExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "sub/b.docx", "skip.md"} {
		if _, err := fixtures.Write(dir, name, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	rec := &recorder{}
	w := startWatcher(t, dir, rec, WithRecursive(false))
	w.Scan()
	waitFor(t, func() bool {
		in, _ := rec.snapshot()
		return len(in) == 1 && in[0] == "a.pdf"
	})
}

func TestWatcher_createsMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")
	startWatcher(t, root, &recorder{})
	if _, err := os.Stat(root); err != nil {
		t.Errorf("watched directory should exist: %v", err)
	}
}

func TestJSONSink(t *testing.T) {
	c, err := cache.NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	p := pipeline.New(config.Default(), c)
	out := filepath.Join(t.TempDir(), "out")
	sink, err := NewJSONSink(p, out, nil)
	if err != nil {
		t.Fatal(err)
	}

	src, err := fixtures.Write(t.TempDir(), "jane.docx", fixtures.DOCX(fixtures.Resume...))
	if err != nil {
		t.Fatal(err)
	}
	sink.Ingest(context.Background(), src)

	data, err := os.ReadFile(filepath.Join(out, "jane.docx.json"))
	if err != nil {
		t.Fatal(err)
	}
	var o models.FileOutcome
	if err := json.Unmarshal(data, &o); err != nil {
		t.Fatal(err)
	}
	if !o.Success || o.Record == nil || o.Record.PersonalInfo.Email != "jane.doe@example.com" {
		t.Errorf("outcome = %+v", o)
	}

	bad, err := fixtures.Write(t.TempDir(), "bad.pdf", fixtures.CorruptPDF())
	if err != nil {
		t.Fatal(err)
	}
	sink.Ingest(context.Background(), bad)
	data, err = os.ReadFile(sink.OutputPath(bad))
	if err != nil {
		t.Fatal(err)
	}
	o = models.FileOutcome{}
	if err := json.Unmarshal(data, &o); err != nil {
		t.Fatal(err)
	}
	if o.Success || o.Error == "" {
		t.Errorf("failed outcome = %+v", o)
	}

	sink.Forget(src)
	if _, err := os.Stat(sink.OutputPath(src)); !os.IsNotExist(err) {
		t.Errorf("outcome should be removed, stat err = %v", err)
	}
	sink.Forget(src)
}
