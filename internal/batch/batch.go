package batch

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/rasterize"
)

var (
    // ErrInvalidInput indicates the batch input is neither a PDF nor a directory.
    ErrInvalidInput = errors.New("input is neither a PDF file nor a directory")
    // ErrNoDocumentsFound indicates the resolved document set is empty.
    ErrNoDocumentsFound = errors.New("no PDF documents found")
)

// Runner is the per-document conversion unit driven by the orchestrator.
type Runner interface {
    Run(ctx context.Context, documentPath string, opts pipeline.Options) (string, error)
}

// Options configures one batch run.
type Options struct {
    OutputDir   string
    TempDir     string
    Concurrency int
    Language    string
    Format      rasterize.Format
    DPI         int
    Quality     int
    KeepImages  bool
}

func (o *Options) applyDefaults() {
    if o.Concurrency <= 0 {
        o.Concurrency = 2
    }
    if o.Language == "" {
        o.Language = "ara"
    }
    if o.Format == "" {
        o.Format = rasterize.FormatPNG
    }
}

// Result is the outcome for one document: OutputPath on success, Err on
// failure. Duration covers that document's pipeline only.
type Result struct {
    Document   string
    OutputPath string
    Err        error
    Duration   time.Duration
}

// Succeeded reports whether the document converted.
func (r Result) Succeeded() bool { return r.Err == nil }

// Summary aggregates a finished batch. Immutable once built.
type Summary struct {
    Succeeded int
    Failed    int
    Results   []Result
    Settings  Options
    Started   time.Time
    Total     time.Duration
}

// Average returns the mean per-document duration, zero for an empty batch.
func (s *Summary) Average() time.Duration {
    if len(s.Results) == 0 {
        return 0
    }
    var sum time.Duration
    for _, r := range s.Results {
        sum += r.Duration
    }
    return sum / time.Duration(len(s.Results))
}

// Orchestrator drives the pipeline over many documents with a bounded
// concurrency width.
type Orchestrator struct {
    runner Runner
}

// New creates an Orchestrator around a document runner.
func New(runner Runner) *Orchestrator {
    return &Orchestrator{runner: runner}
}

// ResolveInput expands input into the document set: a directory yields its
// immediate *.pdf entries (case-insensitive, sorted), a single .pdf file
// yields itself.
func ResolveInput(input string) ([]string, error) {
    info, err := os.Stat(input)
    if err != nil {
        return nil, fmt.Errorf("%w: %s", ErrInvalidInput, input)
    }

    if !info.IsDir() {
        if !strings.EqualFold(filepath.Ext(input), ".pdf") {
            return nil, fmt.Errorf("%w: %s", ErrInvalidInput, input)
        }
        return []string{input}, nil
    }

    entries, err := os.ReadDir(input)
    if err != nil {
        return nil, fmt.Errorf("read input dir %s: %w", input, err)
    }
    var docs []string
    for _, e := range entries {
        if e.IsDir() {
            continue
        }
        if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
            docs = append(docs, filepath.Join(input, e.Name()))
        }
    }
    sort.Strings(docs)
    if len(docs) == 0 {
        return nil, fmt.Errorf("%w in %s", ErrNoDocumentsFound, input)
    }
    return docs, nil
}

// Run converts every document resolved from input and returns the summary.
// Documents are partitioned into consecutive chunks of size Concurrency; a
// chunk's pipelines run concurrently and the next chunk starts only after the
// whole chunk finishes. This bounds peak concurrent OCR sessions. One
// document's failure never aborts the batch; the summary report is written
// even when some documents failed.
func (o *Orchestrator) Run(ctx context.Context, input string, opts Options) (*Summary, error) {
    opts.applyDefaults()

    docs, err := ResolveInput(input)
    if err != nil {
        return nil, err
    }
    if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
        return nil, fmt.Errorf("create batch output dir: %w", err)
    }

    log.Info().Int("documents", len(docs)).Int("concurrency", opts.Concurrency).
        Str("language", opts.Language).Msg("starting batch")

    summary := &Summary{
        Settings: opts,
        Started:  time.Now(),
        Results:  make([]Result, len(docs)),
    }

    for lo := 0; lo < len(docs); lo += opts.Concurrency {
        hi := lo + opts.Concurrency
        if hi > len(docs) {
            hi = len(docs)
        }

        var wg sync.WaitGroup
        for i := lo; i < hi; i++ {
            wg.Add(1)
            go func(idx int) {
                defer wg.Done()
                summary.Results[idx] = o.runOne(ctx, docs[idx], opts)
            }(i)
        }
        wg.Wait()
    }

    for _, r := range summary.Results {
        if r.Succeeded() {
            summary.Succeeded++
        } else {
            summary.Failed++
        }
    }
    summary.Total = time.Since(summary.Started)

    reportPath := filepath.Join(opts.OutputDir, ReportFileName)
    if err := WriteReport(summary, reportPath); err != nil {
        log.Error().Err(err).Str("path", reportPath).Msg("failed to write batch summary report")
    }

    log.Info().Int("succeeded", summary.Succeeded).Int("failed", summary.Failed).
        Dur("total", summary.Total).Msg("batch complete")
    return summary, nil
}

func (o *Orchestrator) runOne(ctx context.Context, doc string, opts Options) Result {
    base := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
    start := time.Now()

    tempDir := ""
    if opts.TempDir != "" {
        tempDir = filepath.Join(opts.TempDir, base+"_images")
    }
    out, err := o.runner.Run(ctx, doc, pipeline.Options{
        Language:   opts.Language,
        Format:     opts.Format,
        DPI:        opts.DPI,
        Quality:    opts.Quality,
        KeepImages: opts.KeepImages,
        OutputFile: filepath.Join(opts.OutputDir, base+"_text.txt"),
        TempDir:    tempDir,
    })
    res := Result{Document: doc, OutputPath: out, Err: err, Duration: time.Since(start)}
    if err != nil {
        log.Error().Err(err).Str("document", doc).Dur("elapsed", res.Duration).
            Msg("document failed")
    }
    return res
}
