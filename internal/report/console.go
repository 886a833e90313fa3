package report

import (
	"fmt"
	"io"

	"ringstat/internal/campaign"
	"ringstat/internal/regime"
)

// Render writes the human-readable campaign summary. All diagnostics go to
// this writer (stdout in the CLI); machine-readable tables go to WriteFiles.
func Render(w io.Writer, rep *campaign.Report) {
	fmt.Fprintf(w, "campaign %s\n", rep.Root)
	fmt.Fprintf(w, "report id: %s\n", rep.ID)
	fmt.Fprintf(w, "runs analyzed: %d\n", len(rep.Runs))
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(w, "%d runs skipped (unparsable names)\n", len(rep.Skipped))
		for _, s := range rep.Skipped {
			fmt.Fprintf(w, "  skipped: %s\n", s.Path)
		}
	}
	if len(rep.Failures) > 0 {
		fmt.Fprintf(w, "%d runs excluded (unreadable)\n", len(rep.Failures))
		for _, f := range rep.Failures {
			fmt.Fprintf(w, "  excluded: %s: %s\n", f.Path, f.Reason)
		}
	}

	regimes := make(map[regime.Label]int)
	known, violations, noData := 0, 0, 0
	for _, r := range rep.Runs {
		regimes[r.Regime]++
		if r.EnergyDriftMax.IsDefined() {
			known++
			if r.EnergyViolation {
				violations++
			}
		} else {
			noData++
		}
	}

	fmt.Fprintln(w, "\nregime distribution:")
	for _, label := range regime.Labels {
		if n := regimes[label]; n > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", label, n)
		}
	}

	fmt.Fprintln(w, "\nconservation:")
	if known > 0 {
		fmt.Fprintf(w, "  violations: %d/%d (%.1f%%)\n",
			violations, known, 100*float64(violations)/float64(known))
	}
	if noData > 0 {
		fmt.Fprintf(w, "  %d runs had no conservation data\n", noData)
	}

	fmt.Fprintln(w, "\nconditions:")
	for _, s := range rep.Summaries {
		mean := s.Stats["polar_order"].Mean
		note := ""
		if s.LowSample {
			note = "  (low sample)"
		}
		fmt.Fprintf(w, "  %-28s n=%-3d polar_order=%s%s\n", s.Key.Canon(), s.NSamples, mean, note)
	}

	if rep.Fit != nil {
		fmt.Fprintf(w, "\nscaling fit: %s vs %s\n", rep.Fit.Metric, rep.Fit.Abscissa)
		if best, ok := rep.Fit.Comparison.BestResult(); ok {
			fmt.Fprintf(w, "  best model: %s (R²=%.4f)\n", best.ModelName, best.RSquared)
			ci := best.Confidence95()
			for i, name := range best.ParamNames {
				fmt.Fprintf(w, "    %s = %.6g ± %.3g\n", name, best.Params[i], ci[i])
			}
		} else {
			fmt.Fprintln(w, "  no model converged")
		}
		for name, reason := range rep.Fit.Comparison.Failures {
			fmt.Fprintf(w, "  %s did not converge: %s\n", name, reason)
		}
	}
}
