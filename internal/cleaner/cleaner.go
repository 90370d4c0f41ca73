package cleaner

import (
    "context"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog/log"
    "golang.org/x/sync/errgroup"

    "github.com/local/pdfocr/internal/config"
    "github.com/local/pdfocr/internal/metrics"
)

// PlaceholderName is the reserved filename that keeps empty area directories
// in version control; it is never counted or removed.
const PlaceholderName = ".gitkeep"

// Area is one retention-managed directory.
type Area struct {
    Name   string
    Dir    string
    MaxAge time.Duration
    // Suffix restricts cleaning to matching filenames (logs area). Empty
    // matches everything.
    Suffix string
    // SafetyMargin is an age floor: entries younger than it are never
    // removed even when MaxAge says otherwise. Guards in-flight pipeline
    // temp folders against a concurrent sweep.
    SafetyMargin time.Duration
}

// AreaResult is the outcome of cleaning one area.
type AreaResult struct {
    Area       string   `json:"area"`
    Count      int      `json:"count"`
    BytesFreed int64    `json:"bytes_freed"`
    Errors     []string `json:"errors,omitempty"`
}

// Stats aggregates a full cleanup pass across all areas.
type Stats struct {
    Cleaned    int          `json:"cleaned"`
    BytesFreed int64        `json:"bytes_freed"`
    Areas      []AreaResult `json:"areas"`
    Errors     []string     `json:"errors,omitempty"`
    DryRun     bool         `json:"dry_run"`
}

// Cleaner scans the storage areas and removes entries past their retention
// threshold. A dry-run performs identical traversal and accounting without
// deleting anything.
type Cleaner struct {
    areas  []Area
    dryRun bool
    now    func() time.Time
}

// New creates a Cleaner over the given areas.
func New(areas []Area, dryRun bool) *Cleaner {
    return &Cleaner{areas: areas, dryRun: dryRun, now: time.Now}
}

// FromConfig builds the standard four areas from configuration.
func FromConfig(st config.StorageConfig, rt config.RetentionConfig, dryRun bool) *Cleaner {
    areas := []Area{
        {Name: "uploads", Dir: st.UploadsDir, MaxAge: days(rt.UploadsMaxAgeDays)},
        {Name: "outputs", Dir: st.OutputsDir, MaxAge: days(rt.OutputsMaxAgeDays)},
        {Name: "temp", Dir: st.TempDir, MaxAge: time.Duration(rt.TempMaxAgeHours) * time.Hour, SafetyMargin: rt.TempSafetyMargin},
        {Name: "logs", Dir: st.LogsDir, MaxAge: days(rt.LogsMaxAgeDays), Suffix: rt.LogSuffix},
    }
    return New(areas, dryRun)
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// Areas returns the configured areas.
func (c *Cleaner) Areas() []Area { return c.areas }

// CleanArea removes expired entries from one area. A single bad entry is
// recorded and skipped, never aborting the pass.
func (c *Cleaner) CleanArea(area Area) AreaResult {
    res := AreaResult{Area: area.Name}

    entries, err := os.ReadDir(area.Dir)
    if err != nil {
        // failure to enumerate a whole area is a logged, non-fatal skip
        log.Warn().Err(err).Str("area", area.Name).Str("dir", area.Dir).Msg("skipping area: cannot enumerate")
        return res
    }

    minAge := area.MaxAge
    if area.SafetyMargin > minAge {
        minAge = area.SafetyMargin
    }
    now := c.now()

    for _, e := range entries {
        name := e.Name()
        if name == PlaceholderName {
            continue
        }
        if area.Suffix != "" && !strings.HasSuffix(name, area.Suffix) {
            continue
        }

        path := filepath.Join(area.Dir, name)
        info, err := e.Info()
        if err != nil {
            res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", path, err))
            continue
        }
        if now.Sub(info.ModTime()) <= minAge {
            continue
        }

        size := entrySize(path, info)
        if !c.dryRun {
            if err := remove(path, info.IsDir()); err != nil {
                res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", path, err))
                continue
            }
        }
        res.Count++
        res.BytesFreed += size
        log.Debug().Str("area", area.Name).Str("entry", name).Int64("bytes", size).
            Bool("dry_run", c.dryRun).Msg("expired entry cleaned")
    }

    if !c.dryRun {
        metrics.AddCleanup(area.Name, res.Count, res.BytesFreed)
    }
    return res
}

// CleanAll cleans every area concurrently and aggregates the results.
func (c *Cleaner) CleanAll(ctx context.Context) Stats {
    stats := Stats{DryRun: c.dryRun, Areas: make([]AreaResult, len(c.areas))}

    var mu sync.Mutex
    g, _ := errgroup.WithContext(ctx)
    for i, area := range c.areas {
        g.Go(func() error {
            res := c.CleanArea(area)
            mu.Lock()
            stats.Areas[i] = res
            mu.Unlock()
            return nil
        })
    }
    _ = g.Wait()

    for _, res := range stats.Areas {
        stats.Cleaned += res.Count
        stats.BytesFreed += res.BytesFreed
        stats.Errors = append(stats.Errors, res.Errors...)
    }

    log.Info().Int("cleaned", stats.Cleaned).Int64("bytes_freed", stats.BytesFreed).
        Int("errors", len(stats.Errors)).Bool("dry_run", c.dryRun).Msg("cleanup pass complete")
    return stats
}

// Usage reports the current recursive size of each area.
func (c *Cleaner) Usage() map[string]int64 {
    usage := make(map[string]int64, len(c.areas))
    for _, area := range c.areas {
        size := dirSize(area.Dir)
        usage[area.Name] = size
        metrics.SetDiskUsage(area.Name, size)
    }
    return usage
}

func entrySize(path string, info fs.FileInfo) int64 {
    if !info.IsDir() {
        return info.Size()
    }
    return dirSize(path)
}

func dirSize(dir string) int64 {
    var total int64
    _ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
        if err != nil || d.IsDir() {
            return nil
        }
        if info, err := d.Info(); err == nil {
            total += info.Size()
        }
        return nil
    })
    return total
}

func remove(path string, isDir bool) error {
    if isDir {
        return os.RemoveAll(path)
    }
    return os.Remove(path)
}
