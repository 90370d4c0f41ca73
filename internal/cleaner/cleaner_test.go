package cleaner

import (
    "context"
    "os"
    "path/filepath"
    "reflect"
    "testing"
    "time"
)

func writeAged(t *testing.T, path string, age time.Duration) {
    t.Helper()
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        t.Fatal(err)
    }
    if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
        t.Fatal(err)
    }
    old := time.Now().Add(-age)
    if err := os.Chtimes(path, old, old); err != nil {
        t.Fatal(err)
    }
}

func makeAgedDir(t *testing.T, dir string, age time.Duration) {
    t.Helper()
    if err := os.MkdirAll(dir, 0o755); err != nil {
        t.Fatal(err)
    }
    if err := os.WriteFile(filepath.Join(dir, "page_001.png"), []byte("imagedata"), 0o644); err != nil {
        t.Fatal(err)
    }
    old := time.Now().Add(-age)
    if err := os.Chtimes(dir, old, old); err != nil {
        t.Fatal(err)
    }
}

func TestCleanAreaTempThreshold(t *testing.T) {
    temp := t.TempDir()
    makeAgedDir(t, filepath.Join(temp, "old_images"), 3*time.Hour)
    makeAgedDir(t, filepath.Join(temp, "fresh_images"), 1*time.Hour)

    area := Area{Name: "temp", Dir: temp, MaxAge: 2 * time.Hour}

    // dry-run first: accounting without removal
    dry := New([]Area{area}, true).CleanArea(area)
    if dry.Count != 1 || dry.BytesFreed == 0 {
        t.Fatalf("dry-run count=%d bytes=%d, want 1/nonzero", dry.Count, dry.BytesFreed)
    }
    if _, err := os.Stat(filepath.Join(temp, "old_images")); err != nil {
        t.Fatal("dry-run must not delete")
    }

    // real run removes the old folder, keeps the fresh one
    res := New([]Area{area}, false).CleanArea(area)
    if res.Count != 1 {
        t.Fatalf("count = %d, want 1", res.Count)
    }
    if res.BytesFreed != dry.BytesFreed {
        t.Errorf("real bytes=%d differs from dry-run bytes=%d", res.BytesFreed, dry.BytesFreed)
    }
    if _, err := os.Stat(filepath.Join(temp, "old_images")); !os.IsNotExist(err) {
        t.Error("old folder should be removed")
    }
    if _, err := os.Stat(filepath.Join(temp, "fresh_images")); err != nil {
        t.Error("fresh folder should be retained")
    }
}

func TestDryRunIsIdempotent(t *testing.T) {
    dir := t.TempDir()
    writeAged(t, filepath.Join(dir, "a.txt"), 48*time.Hour)
    writeAged(t, filepath.Join(dir, "b.txt"), 72*time.Hour)

    c := New([]Area{{Name: "outputs", Dir: dir, MaxAge: 24 * time.Hour}}, true)
    first := c.CleanAll(context.Background())
    second := c.CleanAll(context.Background())

    if !reflect.DeepEqual(first, second) {
        t.Errorf("dry-run mutated state:\nfirst  %+v\nsecond %+v", first, second)
    }
    if first.Cleaned != 2 {
        t.Errorf("cleaned = %d, want 2", first.Cleaned)
    }
}

func TestPlaceholderNeverCounted(t *testing.T) {
    dir := t.TempDir()
    writeAged(t, filepath.Join(dir, PlaceholderName), 1000*time.Hour)

    res := New(nil, false).CleanArea(Area{Name: "uploads", Dir: dir, MaxAge: 0})
    if res.Count != 0 || res.BytesFreed != 0 {
        t.Errorf("placeholder counted: count=%d bytes=%d", res.Count, res.BytesFreed)
    }
    if _, err := os.Stat(filepath.Join(dir, PlaceholderName)); err != nil {
        t.Error("placeholder removed")
    }
}

func TestLogSuffixFilter(t *testing.T) {
    dir := t.TempDir()
    writeAged(t, filepath.Join(dir, "pdfocr.log"), 400*time.Hour)
    writeAged(t, filepath.Join(dir, "stray.pdf"), 400*time.Hour)

    res := New(nil, false).CleanArea(Area{Name: "logs", Dir: dir, MaxAge: 24 * time.Hour, Suffix: ".log"})
    if res.Count != 1 {
        t.Fatalf("count = %d, want 1", res.Count)
    }
    if _, err := os.Stat(filepath.Join(dir, "stray.pdf")); err != nil {
        t.Error("non-matching file must be skipped, not deleted")
    }
    if _, err := os.Stat(filepath.Join(dir, "pdfocr.log")); !os.IsNotExist(err) {
        t.Error("expired log should be removed")
    }
}

func TestSafetyMarginFloor(t *testing.T) {
    dir := t.TempDir()
    writeAged(t, filepath.Join(dir, "inflight.png"), 5*time.Minute)

    // aggressive threshold, but margin keeps the in-flight entry alive
    area := Area{Name: "temp", Dir: dir, MaxAge: time.Minute, SafetyMargin: 15 * time.Minute}
    res := New(nil, false).CleanArea(area)
    if res.Count != 0 {
        t.Fatalf("count = %d, want 0 (safety margin)", res.Count)
    }
    if _, err := os.Stat(filepath.Join(dir, "inflight.png")); err != nil {
        t.Error("in-flight entry deleted inside safety margin")
    }
}

func TestCleanAllAggregates(t *testing.T) {
    up := t.TempDir()
    out := t.TempDir()
    writeAged(t, filepath.Join(up, "old.pdf"), 48*time.Hour)
    writeAged(t, filepath.Join(out, "old.txt"), 48*time.Hour)
    writeAged(t, filepath.Join(out, "new.txt"), time.Hour)

    c := New([]Area{
        {Name: "uploads", Dir: up, MaxAge: 24 * time.Hour},
        {Name: "outputs", Dir: out, MaxAge: 24 * time.Hour},
    }, false)
    stats := c.CleanAll(context.Background())
    if stats.Cleaned != 2 {
        t.Errorf("cleaned = %d, want 2", stats.Cleaned)
    }
    if stats.BytesFreed != 20 {
        t.Errorf("bytes = %d, want 20", stats.BytesFreed)
    }
    if len(stats.Areas) != 2 {
        t.Errorf("areas = %d, want 2", len(stats.Areas))
    }
}

func TestCleanAreaUnreadableDirIsNonFatal(t *testing.T) {
    res := New(nil, false).CleanArea(Area{Name: "temp", Dir: filepath.Join(t.TempDir(), "missing"), MaxAge: time.Hour})
    if res.Count != 0 || len(res.Errors) != 0 {
        t.Errorf("missing dir should be a silent skip, got %+v", res)
    }
}

func TestUsage(t *testing.T) {
    up := t.TempDir()
    writeAged(t, filepath.Join(up, "doc.pdf"), time.Hour)

    c := New([]Area{{Name: "uploads", Dir: up, MaxAge: time.Hour}}, false)
    usage := c.Usage()
    if usage["uploads"] != 10 {
        t.Errorf("uploads usage = %d, want 10", usage["uploads"])
    }
}
