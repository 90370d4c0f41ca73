// batchocr converts a folder (or single file) of PDFs with bounded
// concurrency and writes a batch summary report.
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/archive"
    "github.com/local/pdfocr/internal/batch"
    cfgpkg "github.com/local/pdfocr/internal/config"
    logpkg "github.com/local/pdfocr/internal/logger"
    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/rasterize"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    var (
        input       = flag.String("in", "", "input folder or single PDF file (required)")
        outDir      = flag.String("out", cfg.Storage.OutputsDir, "output folder for text files and the summary")
        tempDir     = flag.String("temp", cfg.Storage.TempDir, "parent folder for per-document image folders")
        lang        = flag.String("lang", cfg.Pipeline.Language, "tesseract language code")
        format      = flag.String("format", cfg.Pipeline.Format, "intermediate image format: png or jpeg")
        dpi         = flag.Int("dpi", cfg.Pipeline.DPI, "render density in DPI")
        quality     = flag.Int("quality", cfg.Pipeline.Quality, "jpeg quality (1-100)")
        concurrency = flag.Int("concurrency", cfg.Batch.Concurrency, "documents converted in parallel")
        keepImages  = flag.Bool("keep-images", cfg.Pipeline.KeepImages, "keep temporary page images")
    )
    flag.Parse()

    if *input == "" {
        fmt.Fprintln(os.Stderr, "error: -in is required")
        flag.Usage()
        os.Exit(1)
    }

    _ = logpkg.Init(logpkg.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty, File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups, MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress, SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey, AxiomOrgID: cfg.Axiom.OrgID, AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval})
    defer logpkg.Close()

    ctx := context.Background()
    orch := batch.New(pipeline.NewDefault())
    summary, err := orch.Run(ctx, *input, batch.Options{
        OutputDir:   *outDir,
        TempDir:     *tempDir,
        Concurrency: *concurrency,
        Language:    *lang,
        Format:      rasterize.Format(*format),
        DPI:         *dpi,
        Quality:     *quality,
        KeepImages:  *keepImages,
    })
    if err != nil {
        fmt.Fprintf(os.Stderr, "error: %v\n", err)
        os.Exit(1)
    }

    if cfg.Archive.Enabled {
        archiveOutputs(ctx, cfg.Archive, summary)
    }

    fmt.Printf("batch finished: %d succeeded, %d failed in %s\n",
        summary.Succeeded, summary.Failed, summary.Total.Round(time.Millisecond))
    if summary.Failed > 0 {
        os.Exit(1)
    }
}

func archiveOutputs(ctx context.Context, cfg cfgpkg.ArchiveConfig, summary *batch.Summary) {
    arch, err := archive.NewS3Archiver(ctx, cfg.Bucket, cfg.Prefix)
    if err != nil {
        log.Warn().Err(err).Msg("S3 archiving disabled: cannot create archiver")
        return
    }
    var paths []string
    for _, r := range summary.Results {
        if r.Succeeded() {
            paths = append(paths, r.OutputPath)
        }
    }
    arch.ArchiveOutputs(ctx, paths)
}
