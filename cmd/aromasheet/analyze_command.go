package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"aromasheet/internal/formulation"
	"aromasheet/internal/textutil"
	"aromasheet/internal/workbench"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var trialFlag int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <sheet>",
		Short: "Cost, pricing, density, vanillin and labeling of a trial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], false, func(_ context.Context, s *workbench.Session) error {
				a, ok := s.Analyze(trialFlag)
				if !ok {
					return fmt.Errorf("trial %d does not exist (the sheet has %d)", trialFlag, s.Sheet().ActiveTrialCount)
				}
				if asJSON {
					return writeJSON(cmd, a)
				}
				renderAnalysis(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&trialFlag, "trial", "t", 0, "Trial number (defaults to the selected trial)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderAnalysis(out io.Writer, a formulation.Analysis) {
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("Trial %d: %s", a.Trial, a.Name), colorize))

	rows := [][]string{
		{"Target mass", formatGrams(a.TargetMass)},
		{"QSP mass", formatGrams(a.QSPMass)},
		{"Cost", formatMoney(a.Cost.Total)},
		{"  support", formatMoney(a.Cost.Support)},
		{"  aromatic", formatMoney(a.Cost.Aromatic)},
		{"Cost per kg", formatMoney(a.CostPerKg.Total)},
		{"  support", formatMoney(a.CostPerKg.Support)},
		{"  aromatic", formatMoney(a.CostPerKg.Aromatic)},
	}
	if a.SalePrice > 0 {
		rows = append(rows, []string{"Sale price per kg", formatMoney(a.SalePrice)})
	}
	if a.Margin.TargetSalePrice > 0 {
		margin := fmt.Sprintf("%s (%s)", formatMoney(a.Margin.Margin), formatPercent(a.Margin.Percent))
		if a.Margin.OverBudget {
			margin = paint(margin+" over budget", ansiRed, colorize)
		}
		rows = append(rows,
			[]string{"Target sale price", formatMoney(a.Margin.TargetSalePrice)},
			[]string{"Target cost per kg", formatMoney(a.TargetCost)},
			[]string{"Margin", margin},
		)
	}
	rows = append(rows,
		[]string{"Density", fmt.Sprintf("%.3f g/mL", a.Density)},
		[]string{"Volume", fmt.Sprintf("%.2f mL", a.Volume)},
		[]string{"Vanillin", formatPercent(a.Vanillin.Percentage)},
		[]string{"Vanilla fold", fmt.Sprintf("%.2f", a.Vanillin.Fold)},
		[]string{"Bean equivalent", fmt.Sprintf("%.1f g/kg", a.Vanillin.BeansEquiv)},
	)
	fmt.Fprintln(out, renderTable([]string{"Figure", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	fmt.Fprintln(out, renderSectionHeader("Labeling", colorize))
	fmt.Fprintln(out, classificationBadge(a.Classification, colorize))
	if a.Classification.LocalLabel != "" {
		fmt.Fprintln(out, a.Classification.LocalLabel)
	}
	if a.Classification.Details != "" {
		fmt.Fprintln(out, a.Classification.Details)
	}
	if len(a.Classification.Sources) > 0 {
		sources := make([][]string, 0, len(a.Classification.Sources))
		for _, src := range a.Classification.Sources {
			origin := "direct"
			if src.FromExtract {
				origin = "extract"
			}
			sources = append(sources, []string{textutil.Title(src.Source), formatGrams(src.Quantity), formatPercent(src.Percentage), origin})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Source", "Effective", "Share", "Origin"}, sources,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}
}
