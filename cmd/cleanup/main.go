// cleanup removes artifacts past their retention thresholds from the
// uploads, outputs, temp and logs areas.
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "sort"

    "github.com/joho/godotenv"

    "github.com/local/pdfocr/internal/cleaner"
    cfgpkg "github.com/local/pdfocr/internal/config"
    logpkg "github.com/local/pdfocr/internal/logger"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    var (
        dryRun      = flag.Bool("dry-run", false, "simulate the cleanup without deleting anything")
        verbose     = flag.Bool("verbose", false, "print per-area details")
        report      = flag.Bool("report", false, "print per-area disk usage instead of cleaning")
        uploadsDays = flag.Int("uploads-days", cfg.Retention.UploadsMaxAgeDays, "uploads retention in days")
        outputsDays = flag.Int("outputs-days", cfg.Retention.OutputsMaxAgeDays, "outputs retention in days")
        tempHours   = flag.Int("temp-hours", cfg.Retention.TempMaxAgeHours, "temp retention in hours")
        logsDays    = flag.Int("logs-days", cfg.Retention.LogsMaxAgeDays, "logs retention in days")
    )
    flag.Parse()

    cfg.Retention.UploadsMaxAgeDays = *uploadsDays
    cfg.Retention.OutputsMaxAgeDays = *outputsDays
    cfg.Retention.TempMaxAgeHours = *tempHours
    cfg.Retention.LogsMaxAgeDays = *logsDays

    level := cfg.Logging.Level
    if *verbose {
        level = "debug"
    }
    _ = logpkg.Init(logpkg.Options{Level: level, Pretty: cfg.Logging.Pretty, File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB, MaxBackups: cfg.Logging.MaxBackups, MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress})
    defer logpkg.Close()

    c := cleaner.FromConfig(cfg.Storage, cfg.Retention, *dryRun)

    if *report {
        usage := c.Usage()
        names := make([]string, 0, len(usage))
        for name := range usage {
            names = append(names, name)
        }
        sort.Strings(names)
        fmt.Println("disk usage per area:")
        for _, name := range names {
            fmt.Printf("  %-8s %s\n", name, humanBytes(usage[name]))
        }
        return
    }

    stats := c.CleanAll(context.Background())

    mode := ""
    if stats.DryRun {
        mode = " (dry run)"
    }
    fmt.Printf("cleanup%s: removed %d entries, freed %s\n", mode, stats.Cleaned, humanBytes(stats.BytesFreed))
    if *verbose {
        for _, a := range stats.Areas {
            fmt.Printf("  %-8s removed=%d freed=%s\n", a.Area, a.Count, humanBytes(a.BytesFreed))
        }
    }
    for _, e := range stats.Errors {
        fmt.Fprintf(os.Stderr, "warning: %s\n", e)
    }
}

func humanBytes(n int64) string {
    const unit = 1024
    if n < unit {
        return fmt.Sprintf("%d B", n)
    }
    div, exp := int64(unit), 0
    for m := n / unit; m >= unit; m /= unit {
        div *= unit
        exp++
    }
    return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
