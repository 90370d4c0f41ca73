// ocrfolder runs OCR over a folder of page images and assembles one text file.
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "path/filepath"

    "github.com/joho/godotenv"

    cfgpkg "github.com/local/pdfocr/internal/config"
    logpkg "github.com/local/pdfocr/internal/logger"
    "github.com/local/pdfocr/internal/recognize"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    var (
        imagesDir = flag.String("images", "", "folder containing page images (required)")
        lang      = flag.String("lang", cfg.Pipeline.Language, "tesseract language code")
        prefix    = flag.String("prefix", "page_", "only process files with this filename prefix")
        outFile   = flag.String("out", "", "output text file (default: <images>/recognized_text.txt)")
    )
    flag.Parse()

    if *imagesDir == "" {
        fmt.Fprintln(os.Stderr, "error: -images is required")
        flag.Usage()
        os.Exit(1)
    }

    _ = logpkg.Init(logpkg.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups, MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress})
    defer logpkg.Close()

    out := *outFile
    if out == "" {
        out = filepath.Join(*imagesDir, "recognized_text.txt")
    }

    path, err := recognize.NewDefault().RecognizeFolder(context.Background(), *imagesDir, recognize.Options{
        Language:       *lang,
        FilenamePrefix: *prefix,
        OutputFile:     out,
    })
    if err != nil {
        fmt.Fprintf(os.Stderr, "error: %v\n", err)
        os.Exit(1)
    }
    fmt.Printf("recognized text written to %s\n", path)
}
