// Package docx writes minimal WordprocessingML containers so recognized text
// can be downloaded as a .docx file.
package docx

import (
    "archive/zip"
    "encoding/xml"
    "fmt"
    "io"
    "os"
    "strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `</w:body></w:document>`

// Write packages text into a DOCX container on w. Each input line becomes one
// paragraph; paragraphs are marked bidirectional so Arabic text lays out
// right-to-left.
func Write(w io.Writer, text string) error {
    zw := zip.NewWriter(w)

    parts := []struct {
        name, body string
    }{
        {"[Content_Types].xml", contentTypesXML},
        {"_rels/.rels", relsXML},
        {"word/document.xml", buildDocument(text)},
    }
    for _, p := range parts {
        f, err := zw.Create(p.name)
        if err != nil {
            return fmt.Errorf("create %s: %w", p.name, err)
        }
        if _, err := f.Write([]byte(p.body)); err != nil {
            return fmt.Errorf("write %s: %w", p.name, err)
        }
    }
    return zw.Close()
}

// WriteFile packages text into a DOCX file at path.
func WriteFile(path, text string) error {
    f, err := os.Create(path)
    if err != nil {
        return err
    }
    if err := Write(f, text); err != nil {
        f.Close()
        return err
    }
    return f.Close()
}

func buildDocument(text string) string {
    var sb strings.Builder
    sb.WriteString(documentHeader)
    for _, line := range strings.Split(text, "\n") {
        sb.WriteString(`<w:p><w:pPr><w:bidi/></w:pPr><w:r><w:t xml:space="preserve">`)
        _ = xml.EscapeText(&sb, []byte(line))
        sb.WriteString(`</w:t></w:r></w:p>`)
    }
    sb.WriteString(documentFooter)
    return sb.String()
}
