package rasterize

import (
    "context"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "sort"

    "github.com/rs/zerolog/log"
)

// ErrSourceNotFound indicates the source PDF does not exist.
var ErrSourceNotFound = errors.New("source document not found")

// Format is the output image format.
type Format string

const (
    FormatPNG  Format = "png"
    FormatJPEG Format = "jpeg"
)

// Ext returns the filename extension for the format.
func (f Format) Ext() string {
    if f == FormatJPEG {
        return ".jpg"
    }
    return ".png"
}

// Options configures one rasterization run.
type Options struct {
    OutputDir string
    Format    Format
    DPI       int
    Quality   int // jpeg only
}

func (o *Options) applyDefaults() {
    if o.Format == "" {
        o.Format = FormatPNG
    }
    if o.DPI <= 0 {
        o.DPI = 300
    }
    if o.Quality <= 0 || o.Quality > 100 {
        o.Quality = 90
    }
}

// PageResult is the engine's per-page descriptor. Exactly one of Path or Data
// is set: Path for file-backed results, Data for inline-encoded ones. The
// converter normalizes both shapes into a deterministic file on disk.
type PageResult struct {
    Ordinal int // 1-based
    Path    string
    Data    []byte
}

// Engine turns one PDF into per-page raster results. Results come back in
// page order but with engine-chosen locations/encodings.
type Engine interface {
    Render(ctx context.Context, pdfPath string, opts Options) ([]PageResult, error)
}

// Converter wraps an Engine and owns deterministic output naming:
// page_%03d.<ext> inside OutputDir.
type Converter struct {
    engine Engine
}

// New creates a Converter backed by the given engine.
func New(engine Engine) *Converter {
    return &Converter{engine: engine}
}

// NewDefault creates a Converter backed by the embedded go-fitz engine.
func NewDefault() *Converter {
    return New(&FitzEngine{})
}

// PageFileName returns the canonical image filename for a page ordinal.
func PageFileName(ordinal int, format Format) string {
    return fmt.Sprintf("page_%03d%s", ordinal, format.Ext())
}

// Rasterize converts documentPath into per-page images under opts.OutputDir
// and returns the saved paths in ascending page order. A page whose result
// cannot be persisted is skipped with a warning; the returned slice may be
// shorter than the document's page count.
func (c *Converter) Rasterize(ctx context.Context, documentPath string, opts Options) ([]string, error) {
    opts.applyDefaults()

    if _, err := os.Stat(documentPath); err != nil {
        return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, documentPath)
    }
    if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
        return nil, fmt.Errorf("create output dir %s: %w", opts.OutputDir, err)
    }

    results, err := c.engine.Render(ctx, documentPath, opts)
    if err != nil {
        return nil, fmt.Errorf("render %s: %w", documentPath, err)
    }

    sort.Slice(results, func(i, j int) bool { return results[i].Ordinal < results[j].Ordinal })

    saved := make([]string, 0, len(results))
    for _, res := range results {
        target := filepath.Join(opts.OutputDir, PageFileName(res.Ordinal, opts.Format))
        if err := persist(res, target); err != nil {
            log.Warn().Err(err).Int("page", res.Ordinal).Str("document", documentPath).
                Msg("skipping page: could not persist raster result")
            continue
        }
        saved = append(saved, target)
    }

    log.Debug().Str("document", documentPath).Int("pages", len(saved)).
        Int("dpi", opts.DPI).Str("format", string(opts.Format)).Msg("rasterized document")
    return saved, nil
}

// persist normalizes a PageResult into the canonical target path.
func persist(res PageResult, target string) error {
    if res.Data != nil {
        return os.WriteFile(target, res.Data, 0o644)
    }
    if res.Path == "" {
        return errors.New("empty page result")
    }
    if _, err := os.Stat(res.Path); err != nil {
        return fmt.Errorf("result file missing: %w", err)
    }
    if err := os.Rename(res.Path, target); err != nil {
        // cross-device rename falls back to copy
        return copyFile(res.Path, target)
    }
    return nil
}

func copyFile(src, dst string) error {
    in, err := os.Open(src)
    if err != nil {
        return err
    }
    defer in.Close()
    out, err := os.Create(dst)
    if err != nil {
        return err
    }
    if _, err := io.Copy(out, in); err != nil {
        out.Close()
        return err
    }
    if err := out.Close(); err != nil {
        return err
    }
    return os.Remove(src)
}
