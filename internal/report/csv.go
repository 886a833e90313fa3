// Package report renders a campaign analysis into its output artifacts:
// tabular text files, the stdout summary, and an optional SQLite sink.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ringstat/internal/aggregate"
	"ringstat/internal/campaign"
	"ringstat/internal/metrics"
	"ringstat/internal/regime"
)

// File names written under the output directory.
const (
	RunsFile        = "runs.csv"
	ConditionsFile  = "conditions.csv"
	FitsFile        = "fits.csv"
	PredictionsFile = "predictions.csv"
	CurvesFile      = "curves.csv"
)

// WriteFiles writes every tabular artifact under dir, creating it if
// needed.
func WriteFiles(rep *campaign.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeCSV(filepath.Join(dir, RunsFile), runRows(rep)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, ConditionsFile), conditionRows(rep)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, CurvesFile), curveRows(rep)); err != nil {
		return err
	}
	if rep.Fit != nil {
		if err := writeCSV(filepath.Join(dir, FitsFile), fitRows(rep.Fit)); err != nil {
			return err
		}
		if err := writeCSV(filepath.Join(dir, PredictionsFile), predictionRows(rep.Fit)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// cell renders a Value for a table: defined values as numbers, undefined as
// an empty cell, failed computations flagged as such.
func cell(v metrics.Value) string {
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if v.IsFailed() {
		return "failed"
	}
	return ""
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func runRows(rep *campaign.Report) [][]string {
	header := []string{"run_id", "eccentricity", "particle_count", "energy", "seed", "source_path"}
	header = append(header, aggregate.ScalarNames...)
	header = append(header, "regime", "conservation_severity", "energy_violation")

	rows := [][]string{header}
	for _, r := range rep.Runs {
		id := r.Identity
		runID := ""
		if id.RunID >= 0 {
			runID = strconv.Itoa(id.RunID)
		}
		row := []string{
			runID,
			num(id.Eccentricity),
			strconv.Itoa(id.ParticleCount),
			num(id.EnergyPerParticle),
			strconv.Itoa(id.Seed),
			id.SourcePath,
		}
		for _, name := range aggregate.ScalarNames {
			row = append(row, cell(r.Scalar(name)))
		}
		row = append(row, string(r.Regime), string(r.ConservationSeverity),
			strconv.FormatBool(r.EnergyViolation))
		rows = append(rows, row)
	}
	return rows
}

func conditionRows(rep *campaign.Report) [][]string {
	header := []string{"condition", "n_samples", "low_sample"}
	for _, name := range aggregate.ScalarNames {
		header = append(header, name+"_mean", name+"_std", "n_"+name+"_samples")
	}
	for _, label := range regime.Labels {
		header = append(header, "regime_"+string(label))
	}
	header = append(header, "conservation_known", "violations")

	rows := [][]string{header}
	for _, s := range rep.Summaries {
		row := []string{s.Key.Canon(), strconv.Itoa(s.NSamples), strconv.FormatBool(s.LowSample)}
		for _, name := range aggregate.ScalarNames {
			st := s.Stats[name]
			row = append(row, cell(st.Mean), cell(st.Std), strconv.Itoa(st.N))
		}
		for _, label := range regime.Labels {
			row = append(row, strconv.Itoa(s.Regimes[label]))
		}
		row = append(row, strconv.Itoa(s.ConservationKnown), strconv.Itoa(s.Violations))
		rows = append(rows, row)
	}
	return rows
}

func curveRows(rep *campaign.Report) [][]string {
	rows := [][]string{{"condition", "time", "mean_polar_order", "runs", "truncated_to"}}
	for _, c := range rep.Curves {
		for i, v := range c.Mean {
			rows = append(rows, []string{
				c.Key.Canon(),
				num(c.Time[i]),
				num(v),
				strconv.Itoa(c.Runs),
				strconv.Itoa(c.TruncatedTo),
			})
		}
	}
	return rows
}

func fitRows(fr *campaign.FitReport) [][]string {
	rows := [][]string{{"model", "parameter", "value", "stderr", "ci95", "r_squared", "weighted", "best"}}
	best, hasBest := fr.Comparison.BestResult()
	for _, res := range fr.Comparison.Results {
		ci := res.Confidence95()
		isBest := hasBest && res.ModelName == best.ModelName
		for i, name := range res.ParamNames {
			rows = append(rows, []string{
				res.ModelName,
				name,
				num(res.Params[i]),
				num(res.StdErrs[i]),
				num(ci[i]),
				num(res.RSquared),
				strconv.FormatBool(res.Weighted),
				strconv.FormatBool(isBest),
			})
		}
	}
	return rows
}

func predictionRows(fr *campaign.FitReport) [][]string {
	rows := [][]string{{"x", "y_predicted", "in_range"}}
	for _, p := range fr.Predictions {
		rows = append(rows, []string{num(p.X), num(p.Y), strconv.FormatBool(p.InRange)})
	}
	return rows
}
