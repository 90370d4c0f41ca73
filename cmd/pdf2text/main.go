// pdf2text converts one PDF end-to-end: rasterize, OCR, assemble text.
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/joho/godotenv"

    cfgpkg "github.com/local/pdfocr/internal/config"
    "github.com/local/pdfocr/internal/docx"
    logpkg "github.com/local/pdfocr/internal/logger"
    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/rasterize"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    var (
        pdfPath    = flag.String("pdf", "", "path to the input PDF (required)")
        outFile    = flag.String("out", "", "output text file (default: <pdf>_text.txt)")
        lang       = flag.String("lang", cfg.Pipeline.Language, "tesseract language code")
        format     = flag.String("format", cfg.Pipeline.Format, "intermediate image format: png or jpeg")
        dpi        = flag.Int("dpi", cfg.Pipeline.DPI, "render density in DPI")
        quality    = flag.Int("quality", cfg.Pipeline.Quality, "jpeg quality (1-100)")
        keepImages = flag.Bool("keep-images", cfg.Pipeline.KeepImages, "keep the temporary page images")
        tempDir    = flag.String("temp", "", "temporary image folder (default: next to the PDF)")
        asDocx     = flag.Bool("docx", false, "also write a .docx next to the text output")
    )
    flag.Parse()

    if *pdfPath == "" {
        fmt.Fprintln(os.Stderr, "error: -pdf is required")
        flag.Usage()
        os.Exit(1)
    }

    _ = logpkg.Init(logpkg.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups, MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress})
    defer logpkg.Close()

    out, err := pipeline.NewDefault().Run(context.Background(), *pdfPath, pipeline.Options{
        Language:   *lang,
        Format:     rasterize.Format(*format),
        DPI:        *dpi,
        Quality:    *quality,
        KeepImages: *keepImages,
        OutputFile: *outFile,
        TempDir:    *tempDir,
    })
    if err != nil {
        fmt.Fprintf(os.Stderr, "error: %v\n", err)
        os.Exit(1)
    }
    fmt.Printf("converted text written to %s\n", out)

    if *asDocx {
        text, err := os.ReadFile(out)
        if err != nil {
            fmt.Fprintf(os.Stderr, "error: %v\n", err)
            os.Exit(1)
        }
        docxPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".docx"
        if err := docx.WriteFile(docxPath, string(text)); err != nil {
            fmt.Fprintf(os.Stderr, "error: %v\n", err)
            os.Exit(1)
        }
        fmt.Printf("docx written to %s\n", docxPath)
    }
}
