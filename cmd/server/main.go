// server exposes the PDF-to-text pipeline as an HTTP upload/download service
// with a periodic retention sweep.
package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/cleaner"
    cfgpkg "github.com/local/pdfocr/internal/config"
    logpkg "github.com/local/pdfocr/internal/logger"
    "github.com/local/pdfocr/internal/metrics"
    "github.com/local/pdfocr/internal/pipeline"
    "github.com/local/pdfocr/internal/session"
    "github.com/local/pdfocr/internal/web"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    _ = logpkg.Init(logpkg.Options{
        Level:        cfg.Logging.Level,
        Pretty:       cfg.Logging.Pretty,
        File:         cfg.Logging.File,
        MaxSizeMB:    cfg.Logging.MaxSizeMB,
        MaxBackups:   cfg.Logging.MaxBackups,
        MaxAgeDays:   cfg.Logging.MaxAgeDays,
        Compress:     cfg.Logging.Compress,
        SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey:  cfg.Axiom.APIKey,
        AxiomOrgID:   cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush:   cfg.Axiom.FlushInterval,
    })
    defer logpkg.Close()

    metrics.Init()

    // Session store: Redis when configured, in-memory otherwise
    var sessions session.Store
    if cfg.Server.RedisURL != "" {
        rs, err := session.NewRedisStore(cfg.Server.RedisURL, cfg.Server.SessionTTL)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to connect to redis session store")
        }
        sessions = rs
    } else {
        sessions = session.NewMemoryStore(cfg.Server.SessionTTL)
    }
    defer sessions.Close()

    retention := cleaner.FromConfig(cfg.Storage, cfg.Retention, false)

    srv := web.New(web.Options{
        Runner:    pipeline.NewDefault(),
        Sessions:  sessions,
        Cleaner:   retention,
        Storage:   cfg.Storage,
        Pipeline:  cfg.Pipeline,
        MaxUpload: cfg.Server.MaxUploadMB << 20,
    })

    mux := http.NewServeMux()
    srv.RegisterRoutes(mux)
    mux.Handle("/metrics", metrics.Handler())

    // Periodic retention sweep
    sweepCtx, stopSweep := context.WithCancel(context.Background())
    go func() {
        ticker := time.NewTicker(cfg.Retention.SweepInterval)
        defer ticker.Stop()
        for {
            select {
            case <-sweepCtx.Done():
                return
            case <-ticker.C:
                retention.CleanAll(sweepCtx)
                retention.Usage()
            }
        }
    }()

    httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}

    go func() {
        log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
        if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    stopSweep()
    ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
    defer cancel()
    _ = httpSrv.Shutdown(ctx)
    srv.Wait()
    fmt.Println("shutdown complete")
}
