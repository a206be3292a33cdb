package report

import (
	"fmt"
	"strings"
	"time"

	"SignalScan/internal/domain/models"
)

const (
	Header      = "🚨 Stock Signals 🚨"
	NoSignals   = "🚨 No stock signals found in the lookback window. 🚨"
	TimeLayout  = "2006-01-02 15:04"
	skippedHead = "⚠️ Skipped symbols:"
)

var mdEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// Format renders aggregated rows as a Markdown digest, one line per row, in
// the order given.
func Format(rows []models.AggregatedSignal) string {
	if len(rows) == 0 {
		return NoSignals
	}
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")
	writeRows(&b, rows)
	return strings.TrimRight(b.String(), "\n")
}

// FormatRun renders a full run: the digest, its time frame and the failure
// manifest when any symbol was skipped.
func FormatRun(r *models.RunReport) string {
	var b strings.Builder
	if len(r.Signals) == 0 {
		b.WriteString(NoSignals)
		b.WriteString("\n")
	} else {
		b.WriteString(Header)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "_as of %s UTC, lookback %s, %d symbols_\n",
		r.RunAt.UTC().Format(TimeLayout), lookbackLabel(r.Lookback), r.Symbols)
	if len(r.Signals) > 0 {
		b.WriteString("\n")
		writeRows(&b, r.Signals)
	}
	if len(r.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(skippedHead)
		b.WriteString("\n")
		for _, f := range r.Failures {
			sym := f.Symbol
			if sym == "" {
				sym = "-"
			}
			fmt.Fprintf(&b, "• %s (%s): %s\n", mdEscaper.Replace(sym), f.Stage, mdEscaper.Replace(f.Reason))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRows(b *strings.Builder, rows []models.AggregatedSignal) {
	for _, r := range rows {
		fmt.Fprintf(b, "🔹 %s at %s: %s\n",
			bold(r.Symbol), r.Timestamp.Format(TimeLayout), mdEscaper.Replace(r.Label()))
	}
}

// bold wraps s in *...*. Legacy Markdown has no escapes inside an entity, so
// the span is closed around each escaped character: BRK_B -> *BRK*\_*B*.
func bold(s string) string {
	var b strings.Builder
	start := 0
	flush := func(end int) {
		if end > start {
			b.WriteString("*" + s[start:end] + "*")
		}
	}
	for i, r := range s {
		if strings.ContainsRune("_*`[", r) {
			flush(i)
			b.WriteString(mdEscaper.Replace(string(r)))
			start = i + 1
		}
	}
	flush(len(s))
	return b.String()
}

func lookbackLabel(d time.Duration) string {
	if d <= 0 {
		return "unbounded"
	}
	if d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
	return d.String()
}
