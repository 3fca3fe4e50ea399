package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

func newQSPCommand(ctx *commandContext) *cobra.Command {
	var clearQSP bool
	cmd := &cobra.Command{
		Use:   "qsp <sheet> [ingredient]",
		Short: "Show or designate the ingredient that fills each trial to its target mass",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mutate := clearQSP || len(args) == 2
			return ctx.withSession(cmd, args[0], mutate, func(c context.Context, s *workbench.Session) error {
				out := cmd.OutOrStdout()
				switch {
				case clearQSP:
					if err := s.Dispatch(c, formulation.DesignateQSP{}); err != nil {
						return err
					}
					fmt.Fprintln(out, "The sheet no longer has a QSP ingredient")
					return nil
				case len(args) == 2:
					ing, err := s.ResolveIngredient(args[1])
					if err != nil {
						return err
					}
					if err := s.Dispatch(c, formulation.DesignateQSP{IngredientID: ing.ID}); err != nil {
						return err
					}
				}

				sheet := s.Sheet()
				qsp, ok := sheet.Ingredient(sheet.QSPIngredientID)
				if !ok {
					fmt.Fprintln(out, "No QSP ingredient")
					return nil
				}
				fmt.Fprintf(out, "QSP ingredient: %s (%s)\n", qsp.Name, shortID(qsp.ID))
				rows := make([][]string, 0, sheet.ActiveTrialCount)
				for n := 1; n <= sheet.ActiveTrialCount; n++ {
					trial, _ := sheet.Trial(n)
					rows = append(rows, []string{fmt.Sprint(n), trial.Name, formatGrams(trial.TargetMass), formatGrams(sheet.QSPMass(n))})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Trial", "Target", "QSP mass"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearQSP, "clear", false, "Remove the QSP designation")
	return cmd
}
