package batch

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"
)

// ReportFileName is the fixed summary filename inside the batch output folder.
const ReportFileName = "batch_summary.txt"

// WriteReport renders the human-readable batch summary to path.
func WriteReport(s *Summary, path string) error {
    var sb strings.Builder

    sb.WriteString("==================================================\n")
    sb.WriteString("            BATCH CONVERSION SUMMARY\n")
    sb.WriteString("==================================================\n\n")
    sb.WriteString(fmt.Sprintf("Started:         %s\n", s.Started.Format(time.RFC3339)))
    sb.WriteString(fmt.Sprintf("Documents:       %d\n", len(s.Results)))
    sb.WriteString(fmt.Sprintf("Succeeded:       %d\n", s.Succeeded))
    sb.WriteString(fmt.Sprintf("Failed:          %d\n", s.Failed))
    sb.WriteString(fmt.Sprintf("Total duration:  %s\n", s.Total.Round(time.Millisecond)))
    sb.WriteString(fmt.Sprintf("Avg per doc:     %s\n", s.Average().Round(time.Millisecond)))

    sb.WriteString("\nSettings:\n")
    sb.WriteString(fmt.Sprintf("  language:    %s\n", s.Settings.Language))
    sb.WriteString(fmt.Sprintf("  format:      %s\n", s.Settings.Format))
    sb.WriteString(fmt.Sprintf("  dpi:         %d\n", s.Settings.DPI))
    sb.WriteString(fmt.Sprintf("  concurrency: %d\n", s.Settings.Concurrency))
    sb.WriteString(fmt.Sprintf("  keep_images: %t\n", s.Settings.KeepImages))

    sb.WriteString("\nSucceeded documents:\n")
    any := false
    for _, r := range s.Results {
        if r.Succeeded() {
            any = true
            sb.WriteString(fmt.Sprintf("  [OK]   %s -> %s (%s)\n",
                filepath.Base(r.Document), r.OutputPath, r.Duration.Round(time.Millisecond)))
        }
    }
    if !any {
        sb.WriteString("  (none)\n")
    }

    sb.WriteString("\nFailed documents:\n")
    any = false
    for _, r := range s.Results {
        if !r.Succeeded() {
            any = true
            sb.WriteString(fmt.Sprintf("  [FAIL] %s: %s (%s)\n",
                filepath.Base(r.Document), r.Err.Error(), r.Duration.Round(time.Millisecond)))
        }
    }
    if !any {
        sb.WriteString("  (none)\n")
    }

    return os.WriteFile(path, []byte(sb.String()), 0o644)
}
