package web

import (
    "archive/zip"
    "bytes"
    "context"
    "encoding/json"
    "io"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/local/pdfocr/internal/cleaner"
    "github.com/local/pdfocr/internal/config"
    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/session"
)

type fakeRunner struct {
    err  error
    text string
}

func (f *fakeRunner) Run(_ context.Context, _ string, opts pipeline.Options) (string, error) {
    if f.err != nil {
        return "", f.err
    }
    if err := os.MkdirAll(filepath.Dir(opts.OutputFile), 0o755); err != nil {
        return "", err
    }
    if err := os.WriteFile(opts.OutputFile, []byte(f.text), 0o644); err != nil {
        return "", err
    }
    return opts.OutputFile, nil
}

func newTestServer(t *testing.T, runner Runner) (*Server, *http.ServeMux) {
    t.Helper()
    root := t.TempDir()
    st := config.StorageConfig{
        UploadsDir: filepath.Join(root, "uploads"),
        OutputsDir: filepath.Join(root, "outputs"),
        TempDir:    filepath.Join(root, "temp"),
        LogsDir:    filepath.Join(root, "logs"),
    }
    for _, d := range []string{st.UploadsDir, st.OutputsDir, st.TempDir, st.LogsDir} {
        if err := os.MkdirAll(d, 0o755); err != nil {
            t.Fatal(err)
        }
    }
    store := session.NewMemoryStore(time.Hour)
    t.Cleanup(func() { store.Close() })

    srv := New(Options{
        Runner:   runner,
        Sessions: store,
        Cleaner:  cleaner.FromConfig(st, config.FromEnv().Retention, false),
        Storage:  st,
        Pipeline: config.PipelineConfig{Language: "ara", Format: "png", DPI: 150, Quality: 85},
        PageCount: func(string) (int, error) { return 3, nil },
        Validate:  func(string) error { return nil },
    })
    mux := http.NewServeMux()
    srv.RegisterRoutes(mux)
    return srv, mux
}

func multipartPDF(t *testing.T, field, name string, content []byte, language string) (*bytes.Buffer, string) {
    t.Helper()
    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)
    fw, err := mw.CreateFormFile(field, name)
    if err != nil {
        t.Fatal(err)
    }
    if _, err := fw.Write(content); err != nil {
        t.Fatal(err)
    }
    if language != "" {
        _ = mw.WriteField("language", language)
    }
    mw.Close()
    return &buf, mw.FormDataContentType()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestUploadAndDownloadTxt(t *testing.T) {
    srv, mux := newTestServer(t, &fakeRunner{text: "\n\n=== PAGE 1 ===\n\nنص\n"})

    body, ctype := multipartPDF(t, "file", "doc.pdf", pdfBytes, "ara")
    req := httptest.NewRequest(http.MethodPost, "/upload", body)
    req.Header.Set("Content-Type", ctype)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)

    if rec.Code != http.StatusCreated {
        t.Fatalf("upload status = %d body=%s", rec.Code, rec.Body.String())
    }
    var resp uploadResp
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatal(err)
    }
    if resp.SessionID == "" || resp.Status != "processing" || resp.PageCount != 3 {
        t.Fatalf("resp = %+v", resp)
    }

    srv.Wait()

    dl := httptest.NewRequest(http.MethodGet, "/download/"+resp.SessionID+"/txt", nil)
    rec = httptest.NewRecorder()
    mux.ServeHTTP(rec, dl)
    if rec.Code != http.StatusOK {
        t.Fatalf("download status = %d body=%s", rec.Code, rec.Body.String())
    }
    if got := rec.Body.String(); got != "\n\n=== PAGE 1 ===\n\nنص\n" {
        t.Errorf("downloaded text = %q", got)
    }
}

func TestDownloadDocx(t *testing.T) {
    srv, mux := newTestServer(t, &fakeRunner{text: "hello"})

    body, ctype := multipartPDF(t, "file", "doc.pdf", pdfBytes, "")
    req := httptest.NewRequest(http.MethodPost, "/upload", body)
    req.Header.Set("Content-Type", ctype)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    var resp uploadResp
    _ = json.Unmarshal(rec.Body.Bytes(), &resp)
    srv.Wait()

    dl := httptest.NewRequest(http.MethodGet, "/download/"+resp.SessionID+"/docx", nil)
    rec = httptest.NewRecorder()
    mux.ServeHTTP(rec, dl)
    if rec.Code != http.StatusOK {
        t.Fatalf("docx status = %d", rec.Code)
    }
    b, _ := io.ReadAll(rec.Body)
    if _, err := zip.NewReader(bytes.NewReader(b), int64(len(b))); err != nil {
        t.Errorf("docx body is not a zip container: %v", err)
    }
}

func TestUploadRejectsNonPDF(t *testing.T) {
    _, mux := newTestServer(t, &fakeRunner{})

    body, ctype := multipartPDF(t, "file", "evil.pdf", []byte("<html>not a pdf</html>"), "")
    req := httptest.NewRequest(http.MethodPost, "/upload", body)
    req.Header.Set("Content-Type", ctype)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", rec.Code)
    }
}

func TestDownloadFailedConversion(t *testing.T) {
    srv, mux := newTestServer(t, &fakeRunner{err: pipeline.ErrEmptyDocument})

    body, ctype := multipartPDF(t, "file", "doc.pdf", pdfBytes, "")
    req := httptest.NewRequest(http.MethodPost, "/upload", body)
    req.Header.Set("Content-Type", ctype)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    var resp uploadResp
    _ = json.Unmarshal(rec.Body.Bytes(), &resp)
    srv.Wait()

    dl := httptest.NewRequest(http.MethodGet, "/download/"+resp.SessionID+"/txt", nil)
    rec = httptest.NewRecorder()
    mux.ServeHTTP(rec, dl)
    if rec.Code != http.StatusUnprocessableEntity {
        t.Fatalf("status = %d, want 422", rec.Code)
    }
    if got := rec.Body.String(); !bytes.Contains([]byte(got), []byte("no convertible pages")) {
        t.Errorf("error message not mapped: %s", got)
    }
}

func TestDownloadUnknownSession(t *testing.T) {
    _, mux := newTestServer(t, &fakeRunner{})
    req := httptest.NewRequest(http.MethodGet, "/download/nope/txt", nil)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    if rec.Code != http.StatusNotFound {
        t.Fatalf("status = %d, want 404", rec.Code)
    }
}

func TestCleanupEndpointDryRun(t *testing.T) {
    _, mux := newTestServer(t, &fakeRunner{})
    req := httptest.NewRequest(http.MethodPost, "/cleanup?dry_run=1", nil)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d", rec.Code)
    }
    var stats cleaner.Stats
    if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
        t.Fatal(err)
    }
    if !stats.DryRun {
        t.Error("dry_run=1 should produce a dry-run pass")
    }
}

func TestDiskUsageEndpoint(t *testing.T) {
    _, mux := newTestServer(t, &fakeRunner{})
    req := httptest.NewRequest(http.MethodGet, "/disk-usage", nil)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d", rec.Code)
    }
    var usage map[string]int64
    if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
        t.Fatal(err)
    }
    for _, area := range []string{"uploads", "outputs", "temp", "logs"} {
        if _, ok := usage[area]; !ok {
            t.Errorf("missing area %s in usage report", area)
        }
    }
}

func TestHealth(t *testing.T) {
    _, mux := newTestServer(t, &fakeRunner{})
    req := httptest.NewRequest(http.MethodGet, "/health", nil)
    rec := httptest.NewRecorder()
    mux.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d", rec.Code)
    }
}
