package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

func newTrialCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Edit trials: masses, dilutions, target mass and the weighing checklist",
	}
	cmd.AddCommand(newTrialShowCommand(ctx))
	cmd.AddCommand(newTrialAddCommand(ctx))
	cmd.AddCommand(newTrialSelectCommand(ctx))
	cmd.AddCommand(newTrialCopyCommand(ctx))
	cmd.AddCommand(newTrialMassCommand(ctx))
	cmd.AddCommand(newTrialDilutionCommand(ctx))
	cmd.AddCommand(newTrialTargetCommand(ctx))
	cmd.AddCommand(newTrialNameCommand(ctx))
	cmd.AddCommand(newTrialNotesCommand(ctx))
	cmd.AddCommand(newTrialWeighCommand(ctx))
	cmd.AddCommand(newTrialResetWeighedCommand(ctx))
	return cmd
}

// sessionTrial parses value and checks that it names an active trial of s.
func sessionTrial(s *workbench.Session, value string) (int, error) {
	n, err := parseTrial(value)
	if err != nil {
		return 0, err
	}
	if _, ok := s.Sheet().Trial(n); !ok {
		return 0, fmt.Errorf("trial %d does not exist (the sheet has %d)", n, s.Sheet().ActiveTrialCount)
	}
	return n, nil
}

func newTrialShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <sheet> [trial]",
		Short: "Show the weighing plan and notes of a trial (the selected one by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], false, func(_ context.Context, s *workbench.Session) error {
				n := 0
				if len(args) == 2 {
					var err error
					if n, err = sessionTrial(s, args[1]); err != nil {
						return err
					}
				}
				a, ok := s.Analyze(n)
				if !ok {
					return fmt.Errorf("no trial selected")
				}
				trial, _ := s.Sheet().Trial(a.Trial)
				if asJSON {
					return writeJSON(cmd, struct {
						Trial    int                      `json:"trial"`
						Name     string                   `json:"name"`
						Target   float64                  `json:"targetMass"`
						Weighing formulation.WeighingPlan `json:"weighing"`
						Notes    formulation.Notes        `json:"notes"`
					}{a.Trial, a.Name, a.TargetMass, a.Weighing, trial.Notes})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("Trial %d: %s (%s)", a.Trial, a.Name, formatGrams(a.TargetMass)), colorize))
				rows := make([][]string, 0, len(a.Weighing.Lines))
				for _, line := range a.Weighing.Lines {
					name := line.Ingredient.Name
					if line.QSP {
						name += " (QSP)"
					}
					check := "[ ]"
					if line.Weighed {
						check = paint("[x]", ansiGreen, colorize)
					}
					rows = append(rows, []string{check, name, formatGrams(line.Mass), line.Dilution.String()})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "Nothing to weigh yet")
				} else {
					fmt.Fprintln(out, renderTable(
						[]string{"", "Ingredient", "Mass", "Dilution"}, rows,
						[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
						"", fmt.Sprintf("%d/%d weighed", a.Weighing.Weighed, a.Weighing.Total), formatPercent(a.Weighing.Progress),
					))
				}
				if a.Weighing.Complete() {
					fmt.Fprintln(out, paint("Weighing complete", ansiGreen, colorize))
				}
				for _, note := range []struct{ label, text string }{
					{"Sensory notes", trial.Notes.Sensory},
					{"Technical notes", trial.Notes.Technical},
					{"Comments", trial.Notes.Comments},
				} {
					if strings.TrimSpace(note.text) == "" {
						continue
					}
					fmt.Fprintf(out, "%s: %s\n", note.label, note.text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTrialAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <sheet>",
		Short: "Append an empty trial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				before := s.Sheet().ActiveTrialCount
				if err := s.Dispatch(c, formulation.AddTrial{}); err != nil {
					return err
				}
				if after := s.Sheet().ActiveTrialCount; after > before {
					fmt.Fprintf(cmd.OutOrStdout(), "Added trial %d\n", after)
				}
				return nil
			})
		},
	}
}

func newTrialSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <sheet> <trial>",
		Short: "Select the trial other commands default to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				if err := s.Dispatch(c, formulation.SelectTrial{Trial: n}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected trial %d\n", n)
				return nil
			})
		},
	}
}

func newTrialCopyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <sheet> <from> <to>",
		Short: "Copy the masses, dilutions and target of one trial into another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				from, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				to, err := parseTrial(args[2])
				if err != nil {
					return err
				}
				return s.Dispatch(c, formulation.CopyTrial{From: from, To: to})
			})
		},
	}
}

func newTrialMassCommand(ctx *commandContext) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "mass <sheet> <trial> <ingredient> <grams>",
		Short: "Enter the mass of an ingredient; small masses move to a weaker dilution",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				ing, err := s.ResolveIngredient(args[2])
				if err != nil {
					return err
				}
				if ing.ID == s.Sheet().QSPIngredientID {
					return fmt.Errorf("%s is the QSP ingredient; its mass is computed", ing.Name)
				}
				mass := parseQuantity(cmd, args[3])
				if err := s.Dispatch(c, formulation.SetMass{Trial: n, IngredientID: ing.ID, Mass: mass, Raw: raw}); err != nil {
					return err
				}
				trial, _ := s.Sheet().Trial(n)
				cell := trial.Cells.Get(ing.ID)
				stored, _ := cell.FixedMass()
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s at %s\n", ing.Name, formatGrams(stored), cell.Strength())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Store the mass as entered, without automatic dilution")
	return cmd
}

func newTrialDilutionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dilution <sheet> <trial> <ingredient> <dilution>",
		Short: "Set the dilution of a cell (100%, 10%, 1% or 0.1%)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				ing, err := s.ResolveIngredient(args[2])
				if err != nil {
					return err
				}
				d, ok := formulation.ParseDilution(args[3])
				if !ok {
					return fmt.Errorf("invalid dilution %q (want 100%%, 10%%, 1%% or 0.1%%)", args[3])
				}
				return s.Dispatch(c, formulation.SetDilution{Trial: n, IngredientID: ing.ID, Dilution: d})
			})
		},
	}
}

func newTrialTargetCommand(ctx *commandContext) *cobra.Command {
	var rescale bool
	cmd := &cobra.Command{
		Use:   "target <sheet> <trial> <grams>",
		Short: "Change the batch size of a trial",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rescale") {
				rescale = cfg.Formulation.RescaleOnTargetChange
			}
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				mass := parseQuantity(cmd, args[2])
				if err := s.Dispatch(c, formulation.SetTargetMass{Trial: n, Mass: mass, Rescale: rescale}); err != nil {
					return err
				}
				trial, _ := s.Sheet().Trial(n)
				fmt.Fprintf(cmd.OutOrStdout(), "Trial %d target: %s\n", n, formatGrams(trial.TargetMass))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&rescale, "rescale", false, "Scale every fixed mass by the same ratio (default from config)")
	return cmd
}

func newTrialNameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "name <sheet> <trial> <name>",
		Short: "Rename a trial",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				return s.Dispatch(c, formulation.SetTrialName{Trial: n, Name: args[2]})
			})
		},
	}
}

func parseNoteField(value string) (formulation.NoteField, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sensory":
		return formulation.NoteSensory, nil
	case "technical", "tech":
		return formulation.NoteTechnical, nil
	case "comments", "comment":
		return formulation.NoteComments, nil
	}
	return "", fmt.Errorf("invalid notes field %q (want sensory, technical or comments)", value)
}

func newTrialNotesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <sheet> <trial> <sensory|technical|comments> <text>",
		Short: "Write one of the free-text notes of a trial",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := parseNoteField(args[2])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				return s.Dispatch(c, formulation.SetNotes{Trial: n, Field: field, Value: args[3]})
			})
		},
	}
}

func newTrialWeighCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weigh <sheet> <trial> <ingredient>...",
		Short: "Toggle the weighed checkbox of ingredients",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				actions := make([]formulation.Action, 0, len(args)-2)
				for _, ref := range args[2:] {
					ing, err := s.ResolveIngredient(ref)
					if err != nil {
						return err
					}
					actions = append(actions, formulation.ToggleWeighed{Trial: n, IngredientID: ing.ID})
				}
				if err := s.Dispatch(c, actions...); err != nil {
					return err
				}
				a, _ := s.Analyze(n)
				fmt.Fprintf(cmd.OutOrStdout(), "%d/%d weighed\n", a.Weighing.Weighed, a.Weighing.Total)
				return nil
			})
		},
	}
}

func newTrialResetWeighedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-weighed <sheet> <trial>",
		Short: "Clear the weighing checklist of a trial",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				return s.Dispatch(c, formulation.ResetWeighed{Trial: n})
			})
		},
	}
}
