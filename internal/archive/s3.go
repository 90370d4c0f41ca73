// Package archive uploads finished conversion artifacts to S3 for long-term
// storage, decoupled from the local retention areas.
package archive

import (
    "context"
    "fmt"
    "os"
    "path"
    "path/filepath"
    "time"

    "github.com/aws/aws-sdk-go-v2/aws"
    awscfg "github.com/aws/aws-sdk-go-v2/config"
    "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
    "github.com/aws/aws-sdk-go-v2/service/s3"
    "github.com/rs/zerolog/log"
)

// S3Archiver copies output files to an S3 bucket under a key prefix.
type S3Archiver struct {
    uploader *manager.Uploader
    bucket   string
    prefix   string
}

// NewS3Archiver creates an archiver using the default AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
    cfg, err := awscfg.LoadDefaultConfig(ctx)
    if err != nil {
        return nil, fmt.Errorf("load AWS config: %w", err)
    }
    cli := s3.NewFromConfig(cfg)
    return &S3Archiver{
        uploader: manager.NewUploader(cli),
        bucket:   bucket,
        prefix:   prefix,
    }, nil
}

// ArchiveFile uploads the file at localPath and returns its s3:// URL.
// Keys are date-partitioned: <prefix>/<yyyy-mm-dd>/<basename>.
func (a *S3Archiver) ArchiveFile(ctx context.Context, localPath string) (string, error) {
    f, err := os.Open(localPath)
    if err != nil {
        return "", fmt.Errorf("open %s: %w", localPath, err)
    }
    defer f.Close()

    key := path.Join(a.prefix, time.Now().UTC().Format("2006-01-02"), filepath.Base(localPath))
    _, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
        Bucket:      aws.String(a.bucket),
        Key:         aws.String(key),
        Body:        f,
        ContentType: aws.String("text/plain; charset=utf-8"),
    })
    if err != nil {
        return "", fmt.Errorf("upload %s: %w", key, err)
    }

    url := fmt.Sprintf("s3://%s/%s", a.bucket, key)
    log.Info().Str("file", localPath).Str("url", url).Msg("archived output to S3")
    return url, nil
}

// ArchiveOutputs uploads every path, logging and skipping individual
// failures; archiving is best-effort and never blocks the batch result.
func (a *S3Archiver) ArchiveOutputs(ctx context.Context, paths []string) {
    for _, p := range paths {
        if _, err := a.ArchiveFile(ctx, p); err != nil {
            log.Warn().Err(err).Str("file", p).Msg("failed to archive output")
        }
    }
}
