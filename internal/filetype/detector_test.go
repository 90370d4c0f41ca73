package filetype

import (
    "os"
    "path/filepath"
    "testing"
)

func TestIsPDF(t *testing.T) {
    d := New()
    if !d.IsPDF([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")) {
        t.Error("PDF magic bytes not recognized")
    }
    if d.IsPDF([]byte("just text")) {
        t.Error("plain text misdetected as PDF")
    }
}

func TestIsPDFFileIgnoresExtension(t *testing.T) {
    dir := t.TempDir()
    fake := filepath.Join(dir, "document.pdf")
    if err := os.WriteFile(fake, []byte("<html></html>"), 0o644); err != nil {
        t.Fatal(err)
    }

    d := New()
    ok, err := d.IsPDFFile(fake)
    if err != nil {
        t.Fatal(err)
    }
    if ok {
        t.Error("html with .pdf extension must not pass as PDF")
    }

    real := filepath.Join(dir, "real.bin")
    if err := os.WriteFile(real, []byte("%PDF-1.4\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    ok, err = d.IsPDFFile(real)
    if err != nil {
        t.Fatal(err)
    }
    if !ok {
        t.Error("PDF content with odd extension should pass")
    }
}
