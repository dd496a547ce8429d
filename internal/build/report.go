package build

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// maxReportPages caps the per-page listing.
const maxReportPages = 20

// Report writes a human readable build summary.
func Report(w io.Writer, r *Result) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("✓ %d pages rendered in %s", len(r.Pages), r.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	total := 0
	for i, p := range r.Pages {
		total += p.Size
		if i >= maxReportPages {
			continue
		}
		fmt.Fprintf(&b, "  %-40s %s\n", fileStyle.Render(p.File), dimStyle.Render(formatSize(p.Size)))
	}
	if n := len(r.Pages) - maxReportPages; n > 0 {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("... and %d more", n)))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-14s %s\n", "total", formatSize(total))
	fmt.Fprintf(&b, "  %-14s %s\n", "hash", r.Hash)
	fmt.Fprintf(&b, "  %-14s %s\n", "loader data", r.LoaderManifest)
	if r.Precache != "" {
		fmt.Fprintf(&b, "  %-14s %s\n", "precache", r.Precache)
	}

	io.WriteString(w, b.String())
}

func formatSize(n int) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KiB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}
