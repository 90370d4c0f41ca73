package filetype

import (
    "fmt"

    "github.com/gabriel-vasile/mimetype"
    "github.com/rs/zerolog/log"
)

// Detector identifies file types by magic bytes, not filename.
type Detector struct{}

// New creates a new file type detector.
func New() *Detector {
    return &Detector{}
}

// DetectFile returns the MIME type of the file at path.
func (d *Detector) DetectFile(path string) (string, error) {
    mtype, err := mimetype.DetectFile(path)
    if err != nil {
        return "", fmt.Errorf("detect file type: %w", err)
    }
    log.Debug().Str("mime", mtype.String()).Str("file", path).Msg("detected file type")
    return mtype.String(), nil
}

// IsPDF reports whether data carries the PDF magic bytes.
func (d *Detector) IsPDF(data []byte) bool {
    return mimetype.Detect(data).Is("application/pdf")
}

// IsPDFFile reports whether the file at path is a PDF regardless of extension.
func (d *Detector) IsPDFFile(path string) (bool, error) {
    mtype, err := mimetype.DetectFile(path)
    if err != nil {
        return false, fmt.Errorf("detect file type: %w", err)
    }
    return mtype.Is("application/pdf"), nil
}
