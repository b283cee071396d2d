package main

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"strconv"

	"figstats/adapters/api"
	"figstats/app"
)

func (c *cli) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) writeCSV(header []string, rows [][]float64) error {
	w := csv.NewWriter(c.out)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatFloat(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatFloat writes +Inf as Inf, the way R prints it
func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c *cli) writeDensity(r *app.DensityReport) error {
	if c.format == "json" {
		return c.writeJSON(api.NewDensityResponse(r))
	}
	rows := make([][]float64, len(r.Rows))
	for i, d := range r.Rows {
		rows[i] = []float64{d.EvalPoint, d.ObsDensity, d.ObsLower, d.ObsUpper, d.NormalDensity, d.NormalLower, d.NormalUpper}
	}
	return c.writeCSV([]string{"eval_point", "obs_density", "obs_lower", "obs_upper",
		"normal_density", "normal_lower", "normal_upper"}, rows)
}

func (c *cli) writeQuantile(r *app.QuantileReport) error {
	if c.format == "json" {
		return c.writeJSON(api.NewQuantileResponse(r))
	}
	rows := make([][]float64, len(r.Rows))
	for i, q := range r.Rows {
		rows[i] = []float64{q.Observed, q.Theoretical, q.Fitted, q.Lower, q.Upper}
	}
	return c.writeCSV([]string{"observed", "theoretical", "fitted", "lower", "upper"}, rows)
}

// writeTransform writes the candidate curve in CSV form; the selected
// lambda is the row with selected = 1
func (c *cli) writeTransform(r *app.TransformReport) error {
	if c.format == "json" {
		return c.writeJSON(r)
	}
	header := []string{"lambda"}
	if len(r.Candidates) > 0 {
		for _, p := range r.Candidates[0].PValues {
			header = append(header, p.Test)
		}
	}
	header = append(header, "combined", "selected")

	rows := make([][]float64, len(r.Candidates))
	marked := false
	for i, cand := range r.Candidates {
		row := []float64{cand.Lambda}
		for _, p := range cand.PValues {
			row = append(row, p.PValue)
		}
		selected := 0.0
		if !marked && cand.Lambda == r.Lambda {
			selected, marked = 1, true
		}
		rows[i] = append(row, cand.Combined, selected)
	}
	return c.writeCSV(header, rows)
}

func (c *cli) writeApply(r *app.ApplyReport) error {
	if c.format == "json" {
		return c.writeJSON(api.NewApplyResponse(r))
	}
	rows := make([][]float64, len(r.Values))
	for i, v := range r.Values {
		rows[i] = []float64{v}
	}
	return c.writeCSV([]string{"value"}, rows)
}

func (c *cli) writeDescribe(r *app.DescribeReport) error {
	if c.format == "json" {
		return c.writeJSON(api.NewDescribeResponse(r))
	}
	return c.writeCSV(
		[]string{"n", "missing", "mean", "sd", "min", "q25", "median", "q75", "max", "skewness", "excess_kurtosis", "outliers"},
		[][]float64{{float64(r.N), float64(r.Missing), r.Mean, r.StdDev, r.Min, r.Q25, r.Median, r.Q75, r.Max,
			r.Skewness, r.Kurtosis, float64(r.Outliers)}})
}
