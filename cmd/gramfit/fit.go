// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gramian/regress"
)

func newFitCmd(g *globalFlags) *cobra.Command {
	d := &dataFlags{}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a linear model and print its coefficients",
		Long: `Reads a CSV file, accumulates the normal equations chunk by chunk,
factorizes them with the block Cholesky solver and prints the coefficients.

Examples:
  gramfit fit --data cars.csv --response mpg --numeric hp,wt --categorical cyl
  gramfit fit --data cars.csv --response mpg --numeric hp,wt --lambda 0.01 --json`,
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
			m, err := regress.Fit(cmd.Context(), mem, p)
			if err != nil {
				return err
			}
			if d.jsonOutput {
				return writeModelJSON(cmd.OutOrStdout(), s.runID, m)
			}
			return writeModelText(cmd.OutOrStdout(), s.runID, m)
		},
	}
	addDataFlags(cmd, d)

	return cmd
}

func writeModelJSON(w io.Writer, runID string, m *regress.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		RunID string `json:"run_id"`
		*regress.Model
	}{runID, m})
}

func writeModelText(w io.Writer, runID string, m *regress.Model) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run_id\t%s\n", runID)
	fmt.Fprintf(tw, "nobs\t%d\n", m.Nobs)
	fmt.Fprintf(tw, "lambda\t%g\n", m.Lambda)
	fmt.Fprintf(tw, "mse\t%g\n\n", m.MSE)
	fmt.Fprintf(tw, "column\tcoefficient\n")
	for i, name := range m.Columns {
		fmt.Fprintf(tw, "%s\t%.6f\n", name, m.Beta[i])
	}

	return tw.Flush()
}
