package rasterize

import (
    "bytes"
    "context"
    "fmt"
    "image/jpeg"
    "image/png"

    "github.com/gen2brain/go-fitz"
    "github.com/rs/zerolog/log"
)

// FitzEngine renders PDF pages with the embedded MuPDF (go-fitz) library.
// It produces inline-encoded results; the converter persists them.
type FitzEngine struct{}

// Render rasterizes every page of pdfPath at opts.DPI. A page that fails to
// render is reported as a warning and omitted from the results.
func (e *FitzEngine) Render(ctx context.Context, pdfPath string, opts Options) ([]PageResult, error) {
    doc, err := fitz.New(pdfPath)
    if err != nil {
        return nil, fmt.Errorf("open PDF: %w", err)
    }
    defer doc.Close()

    total := doc.NumPage()
    results := make([]PageResult, 0, total)

    for i := 0; i < total; i++ {
        if err := ctx.Err(); err != nil {
            return nil, err
        }

        // go-fitz uses 0-based indexing
        img, err := doc.ImageDPI(i, float64(opts.DPI))
        if err != nil {
            log.Warn().Err(err).Int("page", i+1).Str("pdf", pdfPath).Msg("failed to render page")
            continue
        }

        var buf bytes.Buffer
        switch opts.Format {
        case FormatJPEG:
            err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality})
        default:
            err = png.Encode(&buf, img)
        }
        if err != nil {
            log.Warn().Err(err).Int("page", i+1).Str("pdf", pdfPath).Msg("failed to encode page image")
            continue
        }

        results = append(results, PageResult{Ordinal: i + 1, Data: buf.Bytes()})
    }

    log.Debug().Str("pdf", pdfPath).Int("total_pages", total).Int("rendered", len(results)).
        Msg("rendered pages with go-fitz")
    return results, nil
}
