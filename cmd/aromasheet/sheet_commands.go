package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

func newSheetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Create, list and manage formulation sheets",
	}
	cmd.AddCommand(newSheetNewCommand(ctx))
	cmd.AddCommand(newSheetListCommand(ctx))
	cmd.AddCommand(newSheetShowCommand(ctx))
	cmd.AddCommand(newSheetProjectCommand(ctx))
	cmd.AddCommand(newSheetRenameCommand(ctx))
	cmd.AddCommand(newSheetDuplicateCommand(ctx))
	cmd.AddCommand(newSheetDeleteCommand(ctx))
	cmd.AddCommand(newSheetResetCommand(ctx))
	return cmd
}

type projectFlags struct {
	reference   string
	date        string
	responsible string
	client      string
	dosage      string
	application string
}

func (p *projectFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&p.reference, "reference", "", "Project reference (defaults to the next Fnnn)")
	flags.StringVar(&p.date, "date", "", "Project date")
	flags.StringVar(&p.responsible, "responsible", "", "Person in charge")
	flags.StringVar(&p.client, "client", "", "Client")
	flags.StringVar(&p.dosage, "dosage", "", "Recommended dosage")
	flags.StringVar(&p.application, "application", "", "Application")
}

// apply overwrites the fields whose flag was set.
func (p *projectFlags) apply(flags *pflag.FlagSet, project formulation.Project) formulation.Project {
	set := func(name, value string, dst *string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("reference", p.reference, &project.Reference)
	set("date", p.date, &project.Date)
	set("responsible", p.responsible, &project.Responsible)
	set("client", p.client, &project.Client)
	set("dosage", p.dosage, &project.Dosage)
	set("application", p.application, &project.Application)
	return project
}

func newSheetNewCommand(ctx *commandContext) *cobra.Command {
	var name string
	var asJSON bool
	project := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkbench(cmd, true, func(c context.Context, wb *workbench.Workbench) error {
				p := project.apply(cmd.Flags(), formulation.Project{Date: time.Now().Format("2006-01-02")})
				s, err := wb.Create(c, workbench.CreateOptions{Name: name, Project: p})
				if err != nil {
					return err
				}
				if err := recordSuggestions(c, s); err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, s.Meta())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created sheet %s (%s)\n", s.Meta().Reference, s.ID())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Sheet name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	project.register(cmd.Flags())
	return cmd
}

// recordSuggestions remembers the project reference and responsible for
// later suggestions.
func recordSuggestions(c context.Context, s *workbench.Session) error {
	p := s.Sheet().Project
	var actions []formulation.Action
	if strings.TrimSpace(p.Reference) != "" {
		actions = append(actions, formulation.AddReference{Reference: p.Reference})
	}
	if strings.TrimSpace(p.Responsible) != "" {
		actions = append(actions, formulation.AddResponsible{Name: p.Responsible})
	}
	if len(actions) == 0 {
		return nil
	}
	return s.Dispatch(c, actions...)
}

func newSheetListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sheets, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkbench(cmd, false, func(c context.Context, wb *workbench.Workbench) error {
				sheets, err := wb.List(c, search)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, sheets)
				}
				out := cmd.OutOrStdout()
				if len(sheets) == 0 {
					if search != "" {
						fmt.Fprintf(out, "No sheet matches %q\n", search)
					} else {
						fmt.Fprintln(out, "No sheets yet; create one with `aromasheet sheet new`")
					}
					return nil
				}
				rows := make([][]string, 0, len(sheets))
				for _, m := range sheets {
					rows = append(rows, []string{
						m.Reference, m.Name, m.Client, m.Responsible, m.Application,
						m.UpdatedAt.Local().Format("2006-01-02 15:04"), shortID(m.ID),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Reference", "Name", "Client", "Responsible", "Application", "Updated", "ID"},
					rows, nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name, reference, responsible, client or application")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSheetShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <sheet>",
		Short: "Show a sheet's project, ingredients and trials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], false, func(c context.Context, s *workbench.Session) error {
				sheet := s.Sheet()
				if asJSON {
					return writeJSON(cmd, sheet)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				meta := s.Meta()
				p := sheet.Project

				fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s %s", meta.Reference, meta.Name), colorize))
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, [][]string{
					{"Reference", p.Reference},
					{"Date", p.Date},
					{"Responsible", p.Responsible},
					{"Client", p.Client},
					{"Dosage", p.Dosage},
					{"Application", p.Application},
				}, nil))

				fmt.Fprintln(out, renderSectionHeader("Ingredients", colorize))
				fmt.Fprintln(out, ingredientTable(sheet))

				fmt.Fprintln(out, renderSectionHeader("Trials", colorize))
				rows := make([][]string, 0, sheet.ActiveTrialCount)
				for n := 1; n <= sheet.ActiveTrialCount; n++ {
					a, ok := s.Analyze(n)
					if !ok {
						continue
					}
					marker := ""
					if n == sheet.SelectedTrial {
						marker = "*"
					}
					rows = append(rows, []string{
						marker + strconv.Itoa(n), a.Name, formatGrams(a.TargetMass), formatGrams(a.QSPMass),
						formatMoney(a.Cost.Total), formatMoney(a.CostPerKg.Total), a.Classification.Label,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Name", "Target", "QSP", "Cost", "Cost/kg", "Label"},
					rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the full sheet as JSON")
	return cmd
}

func newSheetProjectCommand(ctx *commandContext) *cobra.Command {
	project := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "project <sheet>",
		Short: "Edit the project header of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				p := project.apply(cmd.Flags(), s.Sheet().Project)
				if err := s.Dispatch(c, formulation.SetProject{Project: p}); err != nil {
					return err
				}
				if err := recordSuggestions(c, s); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated project of %s\n", s.Meta().Reference)
				return nil
			})
		},
	}
	project.register(cmd.Flags())
	return cmd
}

func newSheetRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <sheet> <name>",
		Short: "Rename a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkbench(cmd, true, func(c context.Context, wb *workbench.Workbench) error {
				meta, err := wb.Rename(c, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", meta.Reference, meta.Name)
				return nil
			})
		},
	}
}

func newSheetDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "duplicate <sheet>",
		Aliases: []string{"dup"},
		Short:   "Copy a sheet under a new reference",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkbench(cmd, true, func(c context.Context, wb *workbench.Workbench) error {
				meta, err := wb.Duplicate(c, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created sheet %s (%s)\n", meta.Reference, meta.ID)
				return nil
			})
		},
	}
}

func newSheetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <sheet>",
		Aliases: []string{"rm"},
		Short:   "Delete a sheet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkbench(cmd, true, func(c context.Context, wb *workbench.Workbench) error {
				meta, err := wb.Delete(c, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted sheet %s\n", meta.Reference)
				return nil
			})
		},
	}
}

func newSheetResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <sheet>",
		Short: "Replace a sheet's content with a fresh one, keeping its reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				return s.Reset(c)
			})
		},
	}
}
