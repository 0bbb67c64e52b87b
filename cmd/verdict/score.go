package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Verdict/internal/report"
	"github.com/MikeSquared-Agency/Verdict/internal/scoring"
)

var (
	scoreJSON      bool
	scoreDetail    bool
	scorePrecision int
)

// matrixFile is the on-disk form of a matrix: a snapshot plus scoring options.
type matrixFile struct {
	ExcludeUnrated   bool `yaml:"exclude_unrated"`
	scoring.Snapshot `yaml:",inline"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <matrix.yaml>...",
	Short: "Score matrix files and print their rankings.",
	Long: `Load matrices from YAML and print their rankings.

Each file lists choices, criteria and continuous_criteria, with optional
weights, ratings (choice -> criterion -> value) and curves
(criterion -> list of {value, score}).

Arguments may be glob patterns, including ** (e.g. "decisions/**/*.yaml").
With more than one file, JSON output is an object keyed by path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandPaths(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		reports := make(map[string]*report.Report, len(paths))
		for _, path := range paths {
			m, err := loadMatrix(path)
			if err != nil {
				return err
			}
			reports[path] = report.FromMatrix(m, scoreDetail)
		}

		if scoreJSON {
			if len(paths) == 1 {
				return report.WriteJSON(out, reports[paths[0]])
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}
		for i, path := range paths {
			if len(paths) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s\n", path)
			}
			if err := report.WriteTable(out, reports[path], scorePrecision); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print JSON instead of a table")
	scoreCmd.Flags().BoolVar(&scoreDetail, "detail", false, "include a per-criterion breakdown of every choice")
	scoreCmd.Flags().IntVar(&scorePrecision, "precision", 2, "decimal places in the table")
}

// expandPaths resolves glob patterns in order, dropping duplicates. A
// pattern that matches nothing is an error.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no matrix files match %q", arg)
		}
		for _, p := range matches {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

func loadMatrix(path string) (*scoring.Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}
	var f matrixFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse matrix: %w", err)
	}
	var opts []scoring.Option
	if f.ExcludeUnrated {
		opts = append(opts, scoring.WithUnratedExcluded())
	}
	m, err := scoring.FromSnapshot(f.Snapshot, opts...)
	if err != nil {
		return nil, fmt.Errorf("load matrix %s: %w", path, err)
	}
	return m, nil
}
