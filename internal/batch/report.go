package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	header  = color.New(color.Bold)
	good    = color.New(color.FgGreen)
	fair    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
	muted   = color.New(color.Faint)
	failure = color.New(color.FgRed, color.Bold)
)

// labelColor picks the color of a recommendation label.
func labelColor(label string) *color.Color {
	switch {
	case strings.HasPrefix(label, "EXCELLENT"), strings.HasPrefix(label, "GOOD"):
		return good
	case strings.HasPrefix(label, "MODERATE"):
		return fair
	default:
		return bad
	}
}

// Print writes the shortlist and any failed files as a table.
func Print(w io.Writer, r *Report) {
	files := make(map[string]string, len(r.Candidates))
	for _, c := range r.Candidates {
		files[c.AnalysisID] = filepath.Base(c.File)
	}

	header.Fprintf(w, "Shortlist for job %s\n", r.JobKey)
	header.Fprintf(w, "%4s  %6s  %-24s  %-28s  %s\n", "RANK", "SCORE", "CANDIDATE", "FILE", "LABEL")
	for _, e := range r.Shortlist {
		file, ours := files[e.AnalysisID]
		if !ours {
			file = "(earlier run)"
		}
		line := fmt.Sprintf("%4d  %6.1f  %-24s  %-28s  ", e.Rank, e.Score, clip(e.CandidateName, 24), clip(file, 28))
		if ours {
			fmt.Fprint(w, line)
		} else {
			muted.Fprint(w, line)
		}
		labelColor(e.Label).Fprintln(w, e.Label)
	}

	for _, c := range r.Candidates {
		if c.Error != "" {
			failure.Fprintf(w, "FAILED  %s: %s\n", c.File, c.Error)
		}
	}
	fmt.Fprintf(w, "\n%d screened, %d failed in %s\n", r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}

func clip(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
