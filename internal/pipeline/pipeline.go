package pipeline

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/metrics"
    "github.com/local/pdfocr/internal/rasterize"
    "github.com/local/pdfocr/internal/recognize"
)

// ErrEmptyDocument indicates rasterization produced zero pages.
var ErrEmptyDocument = errors.New("document rasterized to zero pages")

// Options configures one document conversion.
type Options struct {
    Language   string
    Format     rasterize.Format
    DPI        int
    Quality    int
    KeepImages bool

    // OutputFile is the target text path. Empty derives
    // <basename>_text.txt next to the document.
    OutputFile string

    // TempDir is the parent for the per-document image folder. Empty derives
    // <basename>_images next to the document.
    TempDir string
}

// Converter rasterizes one document into ordered page images.
type Converter interface {
    Rasterize(ctx context.Context, documentPath string, opts rasterize.Options) ([]string, error)
}

// Recognizer OCRs a folder of page images into a text file.
type Recognizer interface {
    RecognizeFolder(ctx context.Context, imagesDir string, opts recognize.Options) (string, error)
}

// Pipeline sequences rasterize -> recognize -> assembly -> cleanup for a
// single document.
type Pipeline struct {
    converter  Converter
    recognizer Recognizer
}

// New creates a Pipeline from its two stages.
func New(converter Converter, recognizer Recognizer) *Pipeline {
    return &Pipeline{converter: converter, recognizer: recognizer}
}

// NewDefault creates a Pipeline with go-fitz rasterization and Tesseract OCR.
func NewDefault() *Pipeline {
    return New(rasterize.NewDefault(), recognize.NewDefault())
}

// Run converts documentPath to text and returns the output file path.
// The temp image folder is removed after success unless KeepImages is set;
// on failure it is always left in place for diagnosis.
func (p *Pipeline) Run(ctx context.Context, documentPath string, opts Options) (string, error) {
    start := time.Now()

    base := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath))
    imagesDir := opts.TempDir
    if imagesDir == "" {
        imagesDir = filepath.Join(filepath.Dir(documentPath), base+"_images")
    }
    outputFile := opts.OutputFile
    if outputFile == "" {
        outputFile = filepath.Join(filepath.Dir(documentPath), base+"_text.txt")
    }

    log.Info().Str("document", documentPath).Str("images_dir", imagesDir).
        Str("language", opts.Language).Msg("starting document pipeline")

    rasterStart := time.Now()
    pages, err := p.converter.Rasterize(ctx, documentPath, rasterize.Options{
        OutputDir: imagesDir,
        Format:    opts.Format,
        DPI:       opts.DPI,
        Quality:   opts.Quality,
    })
    if err != nil {
        metrics.IncDocument("failure")
        return "", fmt.Errorf("rasterize stage: %w", err)
    }
    metrics.ObserveStage("rasterize", time.Since(rasterStart))
    metrics.AddPagesRasterized(len(pages))

    if len(pages) == 0 {
        metrics.IncDocument("failure")
        return "", fmt.Errorf("%w: %s", ErrEmptyDocument, documentPath)
    }

    ocrStart := time.Now()
    out, err := p.recognizer.RecognizeFolder(ctx, imagesDir, recognize.Options{
        Language:       opts.Language,
        FilenamePrefix: "page_",
        OutputFile:     outputFile,
    })
    if err != nil {
        metrics.IncDocument("failure")
        return "", fmt.Errorf("recognize stage: %w", err)
    }
    metrics.ObserveStage("recognize", time.Since(ocrStart))

    // The text output is the deliverable; temp removal is best-effort.
    if !opts.KeepImages {
        if err := os.RemoveAll(imagesDir); err != nil {
            log.Warn().Err(err).Str("dir", imagesDir).Msg("failed to remove temp image folder")
        }
    }

    metrics.IncDocument("success")
    metrics.ObserveStage("total", time.Since(start))
    log.Info().Str("document", documentPath).Str("output", out).
        Int("pages", len(pages)).Dur("elapsed", time.Since(start)).
        Msg("document pipeline complete")
    return out, nil
}
