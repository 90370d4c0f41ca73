package recognize

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

// fakeSession maps image basenames to text or errors and records lifecycle.
type fakeSession struct {
    texts  map[string]string
    errs   map[string]error
    closed bool
    calls  []string
}

func (s *fakeSession) Recognize(imagePath string) (string, error) {
    name := filepath.Base(imagePath)
    s.calls = append(s.calls, name)
    if err, ok := s.errs[name]; ok {
        return "", err
    }
    return s.texts[name], nil
}

func (s *fakeSession) Close() error {
    s.closed = true
    return nil
}

type fakeFactory struct {
    session *fakeSession
    err     error
}

func (f *fakeFactory) NewSession(language string) (Session, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.session, nil
}

func writeImages(t *testing.T, dir string, names ...string) {
    t.Helper()
    if err := os.MkdirAll(dir, 0o755); err != nil {
        t.Fatal(err)
    }
    for _, n := range names {
        if err := os.WriteFile(filepath.Join(dir, n), []byte("img"), 0o644); err != nil {
            t.Fatal(err)
        }
    }
}

func TestRecognizeFolderNoImages(t *testing.T) {
    dir := t.TempDir()
    writeImages(t, dir, "notes.txt")

    r := New(&fakeFactory{session: &fakeSession{}})
    _, err := r.RecognizeFolder(context.Background(), dir, Options{OutputFile: filepath.Join(t.TempDir(), "out.txt")})
    if !errors.Is(err, ErrNoImagesFound) {
        t.Fatalf("err = %v, want ErrNoImagesFound", err)
    }
}

func TestRecognizeFolderOrderAndAssembly(t *testing.T) {
    dir := t.TempDir()
    // created out of order on purpose; lexical sort must fix it
    writeImages(t, dir, "page_002.png", "page_010.png", "page_001.png")

    sess := &fakeSession{texts: map[string]string{
        "page_001.png": "  first  ",
        "page_002.png": "second",
        "page_010.png": "tenth\n",
    }}
    out := filepath.Join(t.TempDir(), "out.txt")
    r := New(&fakeFactory{session: sess})
    got, err := r.RecognizeFolder(context.Background(), dir, Options{Language: "ara", OutputFile: out})
    if err != nil {
        t.Fatal(err)
    }
    if got != out {
        t.Errorf("returned path = %s, want %s", got, out)
    }

    wantCalls := []string{"page_001.png", "page_002.png", "page_010.png"}
    for i, c := range wantCalls {
        if sess.calls[i] != c {
            t.Errorf("call %d = %s, want %s", i, sess.calls[i], c)
        }
    }
    if !sess.closed {
        t.Error("session not closed")
    }

    b, err := os.ReadFile(out)
    if err != nil {
        t.Fatal(err)
    }
    text := string(b)
    want := "\n\n=== PAGE 1 ===\n\nfirst\n\n\n=== PAGE 2 ===\n\nsecond\n\n\n=== PAGE 3 ===\n\ntenth\n"
    if text != want {
        t.Errorf("assembled text mismatch:\ngot  %q\nwant %q", text, want)
    }
}

func TestRecognizeFolderPageFailureIsIsolated(t *testing.T) {
    dir := t.TempDir()
    writeImages(t, dir, "page_001.png", "page_002.png", "page_003.png")

    sess := &fakeSession{
        texts: map[string]string{"page_001.png": "one", "page_003.png": "three"},
        errs:  map[string]error{"page_002.png": errors.New("corrupt bitmap")},
    }
    out := filepath.Join(t.TempDir(), "out.txt")
    _, err := New(&fakeFactory{session: sess}).RecognizeFolder(context.Background(), dir, Options{OutputFile: out})
    if err != nil {
        t.Fatal(err)
    }

    b, _ := os.ReadFile(out)
    text := string(b)
    if !strings.Contains(text, "[ERROR: Could not process this page - corrupt bitmap]") {
        t.Errorf("missing error marker in:\n%s", text)
    }
    if !strings.Contains(text, "one") || !strings.Contains(text, "three") {
        t.Error("surviving pages missing from output")
    }
    if !sess.closed {
        t.Error("session must be closed even when pages fail")
    }
}

func TestRecognizeFolderAllPagesFail(t *testing.T) {
    dir := t.TempDir()
    const pages = 4
    names := make([]string, pages)
    errs := map[string]error{}
    for i := 0; i < pages; i++ {
        names[i] = fmt.Sprintf("page_%03d.png", i+1)
        errs[names[i]] = errors.New("boom")
    }
    writeImages(t, dir, names...)

    out := filepath.Join(t.TempDir(), "out.txt")
    _, err := New(&fakeFactory{session: &fakeSession{errs: errs}}).
        RecognizeFolder(context.Background(), dir, Options{OutputFile: out})
    if err != nil {
        t.Fatalf("all-failed folder must still produce output, got %v", err)
    }

    b, _ := os.ReadFile(out)
    text := string(b)
    for i := 1; i <= pages; i++ {
        if !strings.Contains(text, fmt.Sprintf("=== PAGE %d ===", i)) {
            t.Errorf("missing separator for page %d", i)
        }
    }
    if strings.Count(text, "[ERROR: Could not process this page") != pages {
        t.Errorf("want %d error markers", pages)
    }
}

func TestRecognizeFolderPrefixFilter(t *testing.T) {
    dir := t.TempDir()
    writeImages(t, dir, "page_001.png", "page_002.png", "thumb_001.png")

    sess := &fakeSession{texts: map[string]string{"page_001.png": "a", "page_002.png": "b"}}
    out := filepath.Join(t.TempDir(), "out.txt")
    _, err := New(&fakeFactory{session: sess}).
        RecognizeFolder(context.Background(), dir, Options{FilenamePrefix: "page_", OutputFile: out})
    if err != nil {
        t.Fatal(err)
    }
    for _, c := range sess.calls {
        if strings.HasPrefix(c, "thumb_") {
            t.Errorf("prefix filter leaked %s", c)
        }
    }
    if len(sess.calls) != 2 {
        t.Errorf("got %d calls, want 2", len(sess.calls))
    }
}

func TestRecognizeFolderSessionFactoryError(t *testing.T) {
    dir := t.TempDir()
    writeImages(t, dir, "page_001.png")

    _, err := New(&fakeFactory{err: errors.New("no tessdata")}).
        RecognizeFolder(context.Background(), dir, Options{OutputFile: filepath.Join(t.TempDir(), "out.txt")})
    if err == nil {
        t.Fatal("want session factory error")
    }
}
