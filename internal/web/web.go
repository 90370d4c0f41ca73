package web

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/cleaner"
    "github.com/local/pdfocr/internal/config"
    "github.com/local/pdfocr/internal/docx"
    "github.com/local/pdfocr/internal/filetype"
    "github.com/local/pdfocr/internal/pdfinfo"
    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/rasterize"
    "github.com/local/pdfocr/internal/recognize"
    "github.com/local/pdfocr/internal/session"
)

// Runner is the document conversion unit invoked per upload.
type Runner interface {
    Run(ctx context.Context, documentPath string, opts pipeline.Options) (string, error)
}

// PageCounter reports the page count of a PDF. Seam for tests.
type PageCounter func(path string) (int, error)

// Validator structurally checks a PDF before it is accepted. Seam for tests.
type Validator func(path string) error

// Server exposes the upload/download/cleanup HTTP surface.
type Server struct {
    runner    Runner
    sessions  session.Store
    cleaner   *cleaner.Cleaner
    detector  *filetype.Detector
    pageCount PageCounter
    validate  Validator
    storage   config.StorageConfig
    defaults  config.PipelineConfig
    maxUpload int64

    // tracks in-flight background conversions; Wait-ed in tests and on shutdown
    wg sync.WaitGroup
}

// Wait blocks until all in-flight conversions finish.
func (s *Server) Wait() { s.wg.Wait() }

// Options wires the server's collaborators.
type Options struct {
    Runner    Runner
    Sessions  session.Store
    Cleaner   *cleaner.Cleaner
    Storage   config.StorageConfig
    Pipeline  config.PipelineConfig
    MaxUpload int64 // bytes
    PageCount PageCounter
    Validate  Validator
}

// New creates the HTTP server component.
func New(opts Options) *Server {
    if opts.MaxUpload <= 0 {
        opts.MaxUpload = 64 << 20
    }
    if opts.PageCount == nil {
        opts.PageCount = pdfinfo.PageCount
    }
    if opts.Validate == nil {
        opts.Validate = pdfinfo.Validate
    }
    return &Server{
        runner:    opts.Runner,
        sessions:  opts.Sessions,
        cleaner:   opts.Cleaner,
        detector:  filetype.New(),
        pageCount: opts.PageCount,
        validate:  opts.Validate,
        storage:   opts.Storage,
        defaults:  opts.Pipeline,
        maxUpload: opts.MaxUpload,
    }
}

// RegisterRoutes attaches all handlers to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", s.handleHealth)
    mux.HandleFunc("/upload", s.handleUpload)
    mux.HandleFunc("/download/", s.handleDownload)
    mux.HandleFunc("/cleanup", s.handleCleanup)
    mux.HandleFunc("/disk-usage", s.handleDiskUsage)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResp struct {
    SessionID string `json:"session_id"`
    Status    string `json:"status"`
    PageCount int    `json:"page_count,omitempty"`
    Message   string `json:"message,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if err := r.ParseMultipartForm(s.maxUpload); err != nil {
        httpError(w, http.StatusBadRequest, "invalid multipart form")
        return
    }
    file, hdr, err := r.FormFile("file")
    if err != nil {
        httpError(w, http.StatusBadRequest, "missing file")
        return
    }
    defer file.Close()

    language := r.FormValue("language")
    if language == "" {
        language = s.defaults.Language
    }

    sessionID := uuid.NewString()
    name := hdr.Filename
    if name == "" {
        name = "upload.pdf"
    }
    if err := os.MkdirAll(s.storage.UploadsDir, 0o755); err != nil {
        httpError(w, http.StatusInternalServerError, "cannot create upload dir")
        return
    }
    localPath := filepath.Join(s.storage.UploadsDir, fmt.Sprintf("%s_%s", sessionID, filepath.Base(name)))
    out, err := os.Create(localPath)
    if err != nil {
        httpError(w, http.StatusInternalServerError, "cannot save upload")
        return
    }
    if _, err := io.Copy(out, file); err != nil {
        out.Close()
        httpError(w, http.StatusInternalServerError, "write failed")
        return
    }
    _ = out.Close()

    // magic-byte validation, not extension
    isPDF, err := s.detector.IsPDFFile(localPath)
    if err != nil || !isPDF {
        _ = os.Remove(localPath)
        httpError(w, http.StatusBadRequest, "uploaded file is not a PDF")
        return
    }
    if err := s.validate(localPath); err != nil {
        _ = os.Remove(localPath)
        log.Warn().Err(err).Str("file", name).Msg("rejecting structurally broken PDF")
        httpError(w, http.StatusBadRequest, "uploaded PDF is damaged")
        return
    }

    pages, err := s.pageCount(localPath)
    if err != nil {
        log.Warn().Err(err).Str("file", localPath).Msg("page count failed on upload")
        pages = 0
    }

    sess := session.Session{
        ID:         sessionID,
        Status:     "processing",
        Language:   language,
        UploadPath: localPath,
        PageCount:  pages,
        Created:    time.Now(),
    }
    if err := s.sessions.Set(r.Context(), sess); err != nil {
        httpError(w, http.StatusInternalServerError, "session store unavailable")
        return
    }

    s.wg.Add(1)
    go func() {
        defer s.wg.Done()
        s.convert(sess)
    }()

    log.Info().Str("session", sessionID).Str("file", name).Int("pages", pages).
        Str("language", language).Msg("upload accepted")
    writeJSON(w, http.StatusCreated, uploadResp{SessionID: sessionID, Status: "processing", PageCount: pages})
}

// convert runs the pipeline for one upload in the background and records the
// outcome in the session store.
func (s *Server) convert(sess session.Session) {
    ctx := context.Background()

    out, err := s.runner.Run(ctx, sess.UploadPath, pipeline.Options{
        Language:   sess.Language,
        Format:     rasterize.Format(s.defaults.Format),
        DPI:        s.defaults.DPI,
        Quality:    s.defaults.Quality,
        OutputFile: filepath.Join(s.storage.OutputsDir, sess.ID+"_text.txt"),
        TempDir:    filepath.Join(s.storage.TempDir, sess.ID+"_images"),
    })
    if err != nil {
        sess.Status = "failed"
        sess.Error = publicError(err)
        log.Error().Err(err).Str("session", sess.ID).Msg("conversion failed")
    } else {
        sess.Status = "done"
        sess.OutputPath = out
    }
    if serr := s.sessions.Set(ctx, sess); serr != nil {
        log.Error().Err(serr).Str("session", sess.ID).Msg("failed to persist session result")
    }
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/download/")
    parts := strings.Split(rest, "/")
    if len(parts) != 2 {
        httpError(w, http.StatusBadRequest, "expected /download/{session}/{txt|docx}")
        return
    }
    sessionID, format := parts[0], parts[1]

    sess, ok, err := s.sessions.Get(r.Context(), sessionID)
    if err != nil {
        httpError(w, http.StatusInternalServerError, "session store unavailable")
        return
    }
    if !ok {
        httpError(w, http.StatusNotFound, "session not found")
        return
    }
    switch sess.Status {
    case "done":
    case "failed":
        httpError(w, http.StatusUnprocessableEntity, sess.Error)
        return
    default:
        httpError(w, http.StatusAccepted, "conversion in progress")
        return
    }

    text, err := os.ReadFile(sess.OutputPath)
    if err != nil {
        httpError(w, http.StatusNotFound, "result no longer available")
        return
    }

    switch format {
    case "txt":
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=converted_%s.txt", sessionID))
        _, _ = w.Write(text)
    case "docx":
        w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
        w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=converted_%s.docx", sessionID))
        if err := docx.Write(w, string(text)); err != nil {
            log.Error().Err(err).Str("session", sessionID).Msg("docx packaging failed")
        }
    default:
        httpError(w, http.StatusBadRequest, "format must be txt or docx")
    }
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    c := s.cleaner
    if parseBoolParam(r, "dry_run") {
        c = cleaner.New(s.cleaner.Areas(), true)
    }
    stats := c.CleanAll(r.Context())
    writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDiskUsage(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, s.cleaner.Usage())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
    writeJSON(w, status, map[string]string{"error": msg})
}

func parseBoolParam(r *http.Request, name string) bool {
    v := strings.ToLower(r.URL.Query().Get(name))
    if v == "" {
        v = strings.ToLower(r.FormValue(name))
    }
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

// publicError maps pipeline failures to messages safe to display.
func publicError(err error) string {
    switch {
    case errors.Is(err, rasterize.ErrSourceNotFound):
        return "uploaded document could not be found on disk"
    case errors.Is(err, pipeline.ErrEmptyDocument):
        return "document contains no convertible pages"
    case errors.Is(err, recognize.ErrNoImagesFound):
        return "no page images were produced for recognition"
    default:
        return "conversion failed"
    }
}
