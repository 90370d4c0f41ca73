package pdfinfo

import (
    "fmt"
    "os"

    "github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
    if _, err := os.Stat(path); err != nil {
        return 0, fmt.Errorf("stat %s: %w", path, err)
    }
    n, err := api.PageCountFile(path)
    if err != nil {
        return 0, fmt.Errorf("pdf page count failed: %w", err)
    }
    return n, nil
}

// Validate runs a relaxed structural validation on the PDF at path. Used at
// the upload boundary to reject broken files before they reach the pipeline.
func Validate(path string) error {
    if err := api.ValidateFile(path, nil); err != nil {
        return fmt.Errorf("pdf validation failed: %w", err)
    }
    return nil
}
