// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gramian/gram"
	"github.com/katalvlaran/gramian/pipeline"
	"github.com/katalvlaran/gramian/regress"
)

// gramReport is the JSON form of the gram command output.
type gramReport struct {
	RunID   string      `json:"run_id"`
	Columns []string    `json:"columns"`
	Nobs    int64       `json:"nobs"`
	DiagN   int         `json:"diag_n"`
	SPD     bool        `json:"spd"`
	Matrix  [][]float64 `json:"matrix"`
}

func newGramCmd(g *globalFlags) *cobra.Command {
	d := &dataFlags{}
	cmd := &cobra.Command{
		Use:   "gram",
		Short: "Print the normalized Gram matrix of the design",
		Long: `Accumulates the normalized X'WX statistic of the design, reports whether
it is positive definite and prints it in full.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd, g, d)
			if err != nil {
				return err
			}
			defer s.stop()

			mem, err := s.load(d)
			if err != nil {
				return err
			}
			p, err := s.params()
			if err != nil {
				return err
			}
			layout := mem.Schema().Layout(p.Intercept)
			opts := []pipeline.Option{pipeline.WithTopology(p.Topology), pipeline.WithLogger(s.logger)}
			if p.Workers > 0 {
				opts = append(opts, pipeline.WithWorkers(p.Workers))
			}
			task, _, err := pipeline.Run(cmd.Context(), mem, func() (*regress.Task, error) {
				return regress.NewTask(layout)
			}, opts...)
			if err != nil {
				return err
			}
			var factorOpts []gram.Option
			if p.FactorWorkers > 0 {
				factorOpts = append(factorOpts, gram.WithWorkers(p.FactorWorkers))
			}
			chol, err := gram.Factorize(task.Gram(), factorOpts...)
			if err != nil {
				return err
			}
			xx, err := task.Gram().XX()
			if err != nil {
				return err
			}

			rep := gramReport{
				RunID:   s.runID,
				Columns: mem.Schema().ColumnNames(p.Intercept),
				Nobs:    task.Nobs(),
				DiagN:   layout.DiagN,
				SPD:     chol.IsSPD(),
			}
			for i := 0; i < xx.Rows(); i++ {
				row, err := xx.Row(i)
				if err != nil {
					return err
				}
				rep.Matrix = append(rep.Matrix, append([]float64(nil), row...))
			}
			if !d.jsonOutput {
				return writeGramText(cmd.OutOrStdout(), rep)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	addDataFlags(cmd, d)

	return cmd
}

// writeGramText prints the report header followed by one labelled row of
// the statistic per line.
func writeGramText(w io.Writer, rep gramReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run_id\t%s\n", rep.RunID)
	fmt.Fprintf(tw, "nobs\t%d\n", rep.Nobs)
	fmt.Fprintf(tw, "spd\t%t\n\n", rep.SPD)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(rep.Columns, "\t"))
	for i, row := range rep.Matrix {
		fmt.Fprintf(tw, "%s", rep.Columns[i])
		for _, v := range row {
			fmt.Fprintf(tw, "\t%.6g", v)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
