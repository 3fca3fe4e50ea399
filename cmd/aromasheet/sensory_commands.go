package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

func newSensoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensory",
		Short: "Score trials against the sheet's sensory descriptors",
	}
	cmd.AddCommand(newSensoryShowCommand(ctx))
	cmd.AddCommand(newSensorySetCommand(ctx))
	cmd.AddCommand(newSensoryPresetCommand(ctx))
	cmd.AddCommand(newSensoryPresetsCommand())
	cmd.AddCommand(newSensoryDescriptorCommand(ctx))
	return cmd
}

// resolveDescriptor finds a descriptor by id or case-insensitive name.
func resolveDescriptor(sheet formulation.Sheet, ref string) (formulation.SensoryDescriptor, error) {
	ref = strings.TrimSpace(ref)
	for _, d := range sheet.SensoryDescriptors {
		if d.ID == ref || strings.EqualFold(d.Name, ref) {
			return d, nil
		}
	}
	return formulation.SensoryDescriptor{}, fmt.Errorf("unknown descriptor %q", ref)
}

func newSensoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <sheet>",
		Short: "Show the sensory scores of every trial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], false, func(_ context.Context, s *workbench.Session) error {
				sheet := s.Sheet()
				if asJSON {
					profiles := make(map[string][]formulation.SensoryScore, sheet.ActiveTrialCount)
					for n := 1; n <= sheet.ActiveTrialCount; n++ {
						trial, _ := sheet.Trial(n)
						profiles[strconv.Itoa(n)] = trial.Sensory
					}
					return writeJSON(cmd, struct {
						Descriptors []formulation.SensoryDescriptor       `json:"descriptors"`
						Trials      map[string][]formulation.SensoryScore `json:"trials"`
					}{sheet.SensoryDescriptors, profiles})
				}
				if len(sheet.SensoryDescriptors) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No descriptors; add one or apply a preset")
					return nil
				}
				headers := []string{"Descriptor"}
				aligns := []columnAlignment{alignLeft}
				for n := 1; n <= sheet.ActiveTrialCount; n++ {
					headers = append(headers, strconv.Itoa(n))
					aligns = append(aligns, alignRight)
				}
				rows := make([][]string, 0, len(sheet.SensoryDescriptors))
				for _, d := range sheet.SensoryDescriptors {
					row := []string{d.Name}
					for n := 1; n <= sheet.ActiveTrialCount; n++ {
						trial, _ := sheet.Trial(n)
						cell := "-"
						if v, ok := trial.Score(d.Name); ok {
							cell = strconv.Itoa(v)
						}
						row = append(row, cell)
					}
					rows = append(rows, row)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSensorySetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <sheet> <trial> <descriptor> <0-10>",
		Short: "Score a descriptor for a trial",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(strings.TrimSpace(args[3]))
			if err != nil {
				return fmt.Errorf("invalid score %q", args[3])
			}
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				d, err := resolveDescriptor(s.Sheet(), args[2])
				if err != nil {
					return err
				}
				if err := s.Dispatch(c, formulation.SetSensoryValue{Trial: n, Descriptor: d.Name, Value: value}); err != nil {
					return err
				}
				trial, _ := s.Sheet().Trial(n)
				stored, _ := trial.Score(d.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d\n", d.Name, stored, formulation.MaxSensoryValue)
				return nil
			})
		},
	}
}

func newSensoryPresetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <sheet> <trial> <preset>",
		Short: "Replace the descriptors with a preset profile and score the trial with it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				n, err := sessionTrial(s, args[1])
				if err != nil {
					return err
				}
				return s.Dispatch(c, formulation.ApplySensoryPreset{Trial: n, Preset: args[2]})
			})
		},
	}
}

func newSensoryPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List the sensory presets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, key := range formulation.PresetKeys() {
				p, _ := formulation.LookupPreset(key)
				scores := make([]string, 0, len(p.Descriptors))
				for _, d := range p.Descriptors {
					scores = append(scores, fmt.Sprintf("%s %d", d.Name, d.Value))
				}
				rows = append(rows, []string{p.Key, p.Label, strings.Join(scores, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Label", "Descriptors"}, rows, nil))
			return nil
		},
	}
}

func newSensoryDescriptorCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Edit the sheet-wide descriptor list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <sheet> <name>",
		Short: "Add a descriptor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				return s.Dispatch(c, formulation.AddDescriptor{Name: args[1]})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "remove <sheet> <descriptor>",
		Aliases: []string{"rm"},
		Short:   "Remove a descriptor; existing scores are kept",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				d, err := resolveDescriptor(s.Sheet(), args[1])
				if err != nil {
					return err
				}
				if err := s.Dispatch(c, formulation.RemoveDescriptor{ID: d.ID}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed descriptor %s\n", d.Name)
				return nil
			})
		},
	})
	return cmd
}
