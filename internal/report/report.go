package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/scan"
)

const reportWidth = 60

// ScanReport summarizes one finished scan for display.
type ScanReport struct {
	RunID      string        `json:"run_id"`
	Success    bool          `json:"success"`
	Wine       *catalog.Wine `json:"wine,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	TotalScans int           `json:"total_scans"`
	Favorite   bool          `json:"favorite"`
}

// New builds a report from a run outcome.
func New(o scan.Outcome, startedAt time.Time, d time.Duration) ScanReport {
	r := new(ScanReport)
	r.RunID = o.RunID
	r.Success = o.Success
	r.Wine = o.Result
	r.StartedAt = startedAt
	r.Duration = d
	return *r
}

// Print writes r as indented JSON or as a human-readable card.
func Print(w io.Writer, r ScanReport, jsonOutput bool) error {
	if jsonOutput {
		output, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}

	fmt.Fprint(w, Banner())
	fmt.Fprintln(w, strings.Repeat("=", reportWidth))
	fmt.Fprintln(w, "WINESCAN RESULT")
	fmt.Fprintln(w, strings.Repeat("=", reportWidth))
	fmt.Fprintf(w, "Scan Time: %s (duration: %s)\n", r.StartedAt.Format("2006-01-02 15:04:05 MST"), HumanDuration(r.Duration))

	if !r.Success || r.Wine == nil {
		fmt.Fprintln(w, "\n⛔ Scan cancelled before a wine was found.")
		fmt.Fprintln(w, strings.Repeat("=", reportWidth))
		return nil
	}

	wine := r.Wine
	fmt.Fprintf(w, "\n🍷 %s\n", wine.Label())
	fmt.Fprintf(w, "   Winery  : %s\n", wine.Winery)
	fmt.Fprintf(w, "   Region  : %s, %s\n", wine.Region, wine.Country)
	if wine.Varietal != "" {
		fmt.Fprintf(w, "   Grapes  : %s\n", wine.Varietal)
	}
	fmt.Fprintf(w, "   Style   : %s\n", wine.Type)
	fmt.Fprintf(w, "   Rating  : %s\n", Stars(wine.Rating))
	fmt.Fprintf(w, "   Price   : $%.2f\n", wine.Price)
	if wine.Description != "" {
		fmt.Fprintf(w, "\n   %s\n", wine.Description)
	}
	if r.Favorite {
		fmt.Fprintln(w, "\n   ❤️  In your favorites")
	}

	fmt.Fprintf(w, "\nTotal scans: %d\n", r.TotalScans)
	fmt.Fprintf(w, "Run 'winescan favorites add %s' to save this wine\n", wine.ID)
	fmt.Fprintln(w, strings.Repeat("=", reportWidth))
	return nil
}

// Stars renders a 0-5 rating as five stars plus the number, e.g. "★★★★☆ 4.2".
func Stars(rating float64) string {
	full := int(math.Round(rating))
	full = max(0, min(5, full)) //nolint:mnd // five-star scale
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full) + fmt.Sprintf(" %.1f", rating) //nolint:mnd // five-star scale
}

// HumanDuration returns a compact, human-readable duration string.
// Examples: 850ms, 1.23s, 2m05s, 1h02m.
func HumanDuration(d time.Duration) string {
	if d < time.Millisecond {
		us := d / time.Microsecond
		return fmt.Sprintf("%dµs", us)
	}
	if d < time.Second {
		ms := d / time.Millisecond
		return fmt.Sprintf("%dms", ms)
	}
	if d < time.Minute {
		secs := float64(d) / float64(time.Second)
		return fmt.Sprintf("%.2fs", secs)
	}
	if d < time.Hour {
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh%02dm", h, m)
}

// Banner returns the winescan wine-glass banner.
func Banner() string {
	return "" +
		"  \\       /\n" +
		"   \\~~~~~/    w i n e s c a n\n" +
		"    \\___/     point, scan, sip\n" +
		"      |\n" +
		"     _|_\n"
}
