package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

func newIngredientCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredient",
		Aliases: []string{"ing"},
		Short:   "Manage the ingredient rows of a sheet",
	}
	cmd.AddCommand(newIngredientListCommand(ctx))
	cmd.AddCommand(newIngredientAddCommand(ctx))
	cmd.AddCommand(newIngredientUpdateCommand(ctx))
	cmd.AddCommand(newIngredientDeleteCommand(ctx))
	return cmd
}

func ingredientTable(sheet formulation.Sheet) string {
	rows := make([][]string, 0, len(sheet.Ingredients))
	for _, ing := range sheet.Ingredients {
		name := ing.Name
		if ing.ID == sheet.QSPIngredientID {
			name += " (QSP)"
		}
		source := ""
		if ing.IsExtract {
			source = ing.ExtractSource
		}
		rows = append(rows, []string{
			shortID(ing.ID), ing.Reference, name, string(ing.Type), string(ing.Classification), source,
			formatMoney(ing.Price), formatNumber(ing.Density), formatNumber(ing.VanillinRate),
		})
	}
	return renderTable(
		[]string{"ID", "Ref", "Name", "Type", "Origin", "Extract of", "Price/kg", "Density", "Vanillin %"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func newIngredientListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list <sheet>",
		Aliases: []string{"ls"},
		Short:   "List the ingredients of a sheet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], false, func(_ context.Context, s *workbench.Session) error {
				if asJSON {
					return writeJSON(cmd, s.Sheet().Ingredients)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ingredientTable(s.Sheet()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type ingredientFlags struct {
	name           string
	typ            string
	classification string
	extractSource  string
	price          float64
	density        float64
	vanillin       float64
	reference      string
	cas            string
	fromCatalog    string
}

func (f *ingredientFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "Ingredient name")
	flags.StringVar(&f.typ, "type", "", "support or aromatic")
	flags.StringVar(&f.classification, "class", "", "natural or synthetic")
	flags.StringVar(&f.extractSource, "extract-of", "", "Source of an extract (marks the ingredient as an extract)")
	flags.Float64Var(&f.price, "price", 0, "Price per kilogram")
	flags.Float64Var(&f.density, "density", 0, "Density in g/mL")
	flags.Float64Var(&f.vanillin, "vanillin", 0, "Vanillin content in percent")
	flags.StringVar(&f.reference, "reference", "", "Supplier or internal code")
	flags.StringVar(&f.cas, "cas", "", "CAS number")
	flags.StringVar(&f.fromCatalog, "from-catalog", "", "Copy the catalog entry matching this reference or query")
}

// apply overwrites the fields whose flag was set.
func (f *ingredientFlags) apply(flags *pflag.FlagSet, ing formulation.Ingredient) (formulation.Ingredient, error) {
	if flags.Changed("name") {
		ing.Name = f.name
	}
	if flags.Changed("type") {
		typ, ok := formulation.ParseIngredientType(f.typ)
		if !ok {
			return ing, fmt.Errorf("invalid ingredient type %q (want support or aromatic)", f.typ)
		}
		ing.Type = typ
	}
	if flags.Changed("class") {
		class, ok := formulation.ParseOrigin(f.classification)
		if !ok {
			return ing, fmt.Errorf("invalid classification %q (want natural or synthetic)", f.classification)
		}
		ing.Classification = class
	}
	if flags.Changed("extract-of") {
		ing.ExtractSource = f.extractSource
		ing.IsExtract = f.extractSource != ""
	}
	if flags.Changed("price") {
		ing.Price = f.price
	}
	if flags.Changed("density") {
		ing.Density = f.density
	}
	if flags.Changed("vanillin") {
		ing.VanillinRate = f.vanillin
	}
	if flags.Changed("reference") {
		ing.Reference = f.reference
	}
	if flags.Changed("cas") {
		ing.CAS = f.cas
	}
	return ing, nil
}

func newIngredientAddCommand(ctx *commandContext) *cobra.Command {
	flags := &ingredientFlags{}
	cmd := &cobra.Command{
		Use:   "add <sheet>",
		Short: "Add an ingredient row, by hand or from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				var typ formulation.IngredientType
				if cmd.Flags().Changed("type") {
					t, ok := formulation.ParseIngredientType(flags.typ)
					if !ok {
						return fmt.Errorf("invalid ingredient type %q (want support or aromatic)", flags.typ)
					}
					typ = t
				}
				if flags.fromCatalog != "" {
					ing, err := s.AddFromCatalog(c, flags.fromCatalog, typ)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", ing.Name, ing.ID)
					return nil
				}
				if flags.name == "" {
					return fmt.Errorf("--name or --from-catalog is required")
				}
				ing, err := flags.apply(cmd.Flags(), formulation.Ingredient{
					Type:           formulation.TypeAromatic,
					Classification: formulation.Natural,
				})
				if err != nil {
					return err
				}
				before := len(s.Sheet().Ingredients)
				if err := s.Dispatch(c, formulation.AddIngredient{Ingredient: ing}); err != nil {
					return err
				}
				added := s.Sheet().Ingredients[before]
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", added.Name, added.ID)
				return nil
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newIngredientUpdateCommand(ctx *commandContext) *cobra.Command {
	flags := &ingredientFlags{}
	cmd := &cobra.Command{
		Use:   "update <sheet> <ingredient>",
		Short: "Edit an ingredient row; --from-catalog overwrites every catalog field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				ing, err := s.ResolveIngredient(args[1])
				if err != nil {
					return err
				}
				if flags.fromCatalog != "" {
					if ing, err = s.RefreshFromCatalog(c, ing.ID, flags.fromCatalog); err != nil {
						return err
					}
				}
				updated, err := flags.apply(cmd.Flags(), ing)
				if err != nil {
					return err
				}
				if err := s.Dispatch(c, formulation.UpdateIngredient{Ingredient: updated}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.Name)
				return nil
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newIngredientDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <sheet> <ingredient>",
		Aliases: []string{"rm"},
		Short:   "Remove an ingredient from the sheet and every trial",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], true, func(c context.Context, s *workbench.Session) error {
				ing, err := s.ResolveIngredient(args[1])
				if err != nil {
					return err
				}
				wasQSP := s.Sheet().QSPIngredientID == ing.ID
				if err := s.Dispatch(c, formulation.DeleteIngredient{IngredientID: ing.ID}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", ing.Name)
				if wasQSP {
					fmt.Fprintln(cmd.OutOrStdout(), "The sheet no longer has a QSP ingredient")
				}
				return nil
			})
		},
	}
}
