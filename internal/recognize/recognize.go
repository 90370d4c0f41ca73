package recognize

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "github.com/rs/zerolog/log"

    "github.com/local/pdfocr/internal/metrics"
)

// ErrNoImagesFound indicates the images folder held no matching files.
var ErrNoImagesFound = errors.New("no images found")

// PageSeparator formats the block header preceding each page's text.
const PageSeparator = "\n\n=== PAGE %d ===\n\n"

var imageExtensions = map[string]bool{
    ".png":  true,
    ".jpg":  true,
    ".jpeg": true,
    ".tif":  true,
    ".tiff": true,
    ".bmp":  true,
}

// Session is one OCR engine instance. It is owned by a single
// RecognizeFolder call for its whole lifetime.
type Session interface {
    Recognize(imagePath string) (string, error)
    Close() error
}

// SessionFactory opens an OCR session for a language.
type SessionFactory interface {
    NewSession(language string) (Session, error)
}

// Options configures one folder recognition pass.
type Options struct {
    Language       string
    FilenamePrefix string
    OutputFile     string
}

// Recognizer runs OCR over a folder of page images and assembles the text.
type Recognizer struct {
    factory SessionFactory
}

// New creates a Recognizer backed by the given session factory.
func New(factory SessionFactory) *Recognizer {
    return &Recognizer{factory: factory}
}

// NewDefault creates a Recognizer backed by Tesseract.
func NewDefault() *Recognizer {
    return New(&TesseractFactory{})
}

// RecognizeFolder OCRs every matching image in imagesDir in lexical order
// (zero-padded names give numeric order) and writes the assembled text to
// opts.OutputFile. A page that fails recognition gets an inline error marker;
// one corrupted page never loses the rest of the document.
func (r *Recognizer) RecognizeFolder(ctx context.Context, imagesDir string, opts Options) (string, error) {
    if opts.Language == "" {
        opts.Language = "ara"
    }

    images, err := listImages(imagesDir, opts.FilenamePrefix)
    if err != nil {
        return "", err
    }
    if len(images) == 0 {
        return "", fmt.Errorf("%w in %s", ErrNoImagesFound, imagesDir)
    }

    // One engine session for the whole folder; released on every exit path.
    sess, err := r.factory.NewSession(opts.Language)
    if err != nil {
        return "", fmt.Errorf("open OCR session: %w", err)
    }
    defer func() {
        if cerr := sess.Close(); cerr != nil {
            log.Warn().Err(cerr).Msg("failed to close OCR session")
        }
    }()

    var sb strings.Builder
    for i, img := range images {
        if err := ctx.Err(); err != nil {
            return "", err
        }

        text, err := sess.Recognize(img)
        if err != nil {
            log.Warn().Err(err).Int("page", i+1).Str("image", img).Msg("page recognition failed")
            text = fmt.Sprintf("[ERROR: Could not process this page - %s]", err.Error())
            metrics.IncPageRecognized("error")
        } else {
            metrics.IncPageRecognized("success")
        }

        sb.WriteString(fmt.Sprintf(PageSeparator, i+1))
        sb.WriteString(strings.TrimSpace(text))
        sb.WriteString("\n")
    }

    if err := os.MkdirAll(filepath.Dir(opts.OutputFile), 0o755); err != nil {
        return "", fmt.Errorf("create output dir: %w", err)
    }
    if err := os.WriteFile(opts.OutputFile, []byte(sb.String()), 0o644); err != nil {
        return "", fmt.Errorf("write output %s: %w", opts.OutputFile, err)
    }

    log.Info().Str("output", opts.OutputFile).Int("pages", len(images)).
        Str("language", opts.Language).Msg("folder recognition complete")
    return opts.OutputFile, nil
}

// listImages returns matching image paths sorted lexically.
func listImages(dir, prefix string) ([]string, error) {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return nil, fmt.Errorf("read images dir %s: %w", dir, err)
    }
    var images []string
    for _, e := range entries {
        if e.IsDir() {
            continue
        }
        name := e.Name()
        if prefix != "" && !strings.HasPrefix(name, prefix) {
            continue
        }
        if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
            continue
        }
        images = append(images, filepath.Join(dir, name))
    }
    sort.Strings(images)
    return images, nil
}
