// pdf2images converts one PDF document into per-page raster images.
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
    logpkg "github.com/local/pdfocr/internal/logger"
    "github.com/local/pdfocr/internal/rasterize"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    var (
        pdfPath = flag.String("pdf", "", "path to the input PDF (required)")
        outDir  = flag.String("out", "", "output folder for page images (default: <pdf>_images)")
        format  = flag.String("format", cfg.Pipeline.Format, "image format: png or jpeg")
        dpi     = flag.Int("dpi", cfg.Pipeline.DPI, "render density in DPI")
        quality = flag.Int("quality", cfg.Pipeline.Quality, "jpeg quality (1-100)")
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

    dir := *outDir
    if dir == "" {
        base := strings.TrimSuffix(filepath.Base(*pdfPath), filepath.Ext(*pdfPath))
        dir = filepath.Join(filepath.Dir(*pdfPath), base+"_images")
    }

    paths, err := rasterize.NewDefault().Rasterize(context.Background(), *pdfPath, rasterize.Options{
        OutputDir: dir,
        Format:    rasterize.Format(*format),
        DPI:       *dpi,
        Quality:   *quality,
    })
    if err != nil {
        fmt.Fprintf(os.Stderr, "error: %v\n", err)
        os.Exit(1)
    }

    fmt.Printf("saved %d page images to %s\n", len(paths), dir)
    for _, p := range paths {
        fmt.Println("  " + p)
    }
}
