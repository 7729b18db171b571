package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/demandcast/demandcast/pkg/forecast"
	"github.com/demandcast/demandcast/pkg/models"
)

// report is the run outcome rendered to stdout, as text or JSON.
type report struct {
	Observations int                 `json:"observations"`
	SeriesHash   string              `json:"series_hash"`
	Results      []*models.FitResult `json:"results"`
	Forecast     *forecast.Result    `json:"forecast,omitempty"`
}

// writeTextReport renders the ranked results as an aligned table, followed
// by the forecast when one was requested.
func writeTextReport(w io.Writer, rep report) error {
	fmt.Fprintf(w, "Evaluated %d observations (series %s)\n\n", rep.Observations, rep.SeriesHash)

	if len(rep.Results) == 0 {
		fmt.Fprintln(w, "No family produced a result.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tFAMILY\tMAPE\tMAE\tRMSE\tPARAMETERS")
		for i, r := range rep.Results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1,
				r.Family,
				formatMetric(r.Metrics.MAPE),
				formatMetric(r.Metrics.MAE),
				formatMetric(r.Metrics.RMSE),
				formatParams(r.Params),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if rep.Forecast != nil {
		fc := rep.Forecast
		fmt.Fprintf(w, "\nForecast: %s, %d periods\n", fc.Family, fc.Horizon)
		if fc.Fallback {
			fmt.Fprintf(w, "  fell back to the historical mean: %s\n", fc.Reason)
		}
		for k, v := range fc.Values {
			fmt.Fprintf(w, "  t+%-3d %10.2f\n", k+1, v)
		}
	}

	return nil
}

// writeJSONReport renders the report as indented JSON. NaN values appear
// as null.
func writeJSONReport(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// formatMetric renders one accuracy value, n/a when undefined.
func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// formatParams renders the chosen hyperparameters as key=value pairs in
// stable order.
func formatParams(p models.Params) string {
	if len(p) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if p[k] == nil {
			parts = append(parts, k+"=none")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, ", ")
}
