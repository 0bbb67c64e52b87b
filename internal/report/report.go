// Package report renders scored matrices for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

var (
	topColor       = color.New(color.FgGreen, color.Bold)
	frontierColor  = color.New(color.FgCyan)
	dominatedColor = color.New(color.FgHiBlack)
)

// Report is a rendered view of one matrix.
type Report struct {
	MaxScore     float64                     `json:"max_score"`
	WeightShares map[string]float64          `json:"weight_shares"`
	Ranking      []scoring.Result            `json:"ranking"`
	Frontier     []string                    `json:"frontier"`
	Breakdowns   map[string][]scoring.Factor `json:"breakdowns,omitempty"`
}

// FromMatrix collects the ranking of m. With detail set it also collects
// every choice's breakdown.
func FromMatrix(m *scoring.Matrix, detail bool) *Report {
	r := &Report{
		MaxScore:     m.MaxScore(),
		WeightShares: m.WeightShares(),
		Ranking:      m.Ranking(),
		Frontier:     m.Frontier(),
	}
	if r.Frontier == nil {
		r.Frontier = []string{}
	}
	if detail {
		r.Breakdowns = make(map[string][]scoring.Factor)
		for _, c := range m.Choices() {
			r.Breakdowns[c], _ = m.Breakdown(c)
		}
	}
	return r
}

func (r *Report) onFrontier(choice string) bool {
	for _, c := range r.Frontier {
		if c == choice {
			return true
		}
	}
	return false
}

// label marks the leaders, the other Pareto-optimal choices and the rest.
func (r *Report) label(res scoring.Result) string {
	switch {
	case res.Rank == 1 && res.Percentage > 0:
		return topColor.Sprint("top")
	case r.onFrontier(res.Choice):
		return frontierColor.Sprint("frontier")
	default:
		return dominatedColor.Sprint("dominated")
	}
}

func formatFloat(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// WriteTable renders the ranking, then one breakdown table per choice when
// the report carries them.
func WriteTable(w io.Writer, r *Report, precision int) error {
	fmtFloat := formatFloat(precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Choice", "Score", "Percent", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, res := range r.Ranking {
		data = append(data, []string{
			strconv.Itoa(res.Rank),
			res.Choice,
			fmtFloat(res.Score),
			fmtFloat(res.Percentage) + "%",
			r.label(res),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d choices, max score %s\n", len(r.Ranking), fmtFloat(r.MaxScore)); err != nil {
		return err
	}

	for _, res := range r.Ranking {
		factors, ok := r.Breakdowns[res.Choice]
		if !ok {
			continue
		}
		if err := writeBreakdown(w, res.Choice, factors, fmtFloat); err != nil {
			return err
		}
	}
	return nil
}

func writeBreakdown(w io.Writer, choice string, factors []scoring.Factor, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", choice); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Criterion", "Weight", "Raw", "Score", "Weighted", "Note"})

	var data [][]string
	for _, f := range factors {
		data = append(data, []string{
			f.Criterion,
			optional(f.Weight, fmtFloat),
			optional(f.Raw, fmtFloat),
			fmtFloat(f.Score),
			fmtFloat(f.Weighted),
			f.Reason,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func optional(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
