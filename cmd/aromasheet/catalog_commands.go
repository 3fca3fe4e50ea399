package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aromasheet/internal/catalog"
	"aromasheet/internal/formulation"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the ingredient catalog",
	}
	cmd.AddCommand(newCatalogSearchCommand(ctx))
	cmd.AddCommand(newCatalogExportCommand(ctx))
	return cmd
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "search [query...]",
		Aliases: []string{"find"},
		Short:   "Search the catalog by name, reference, source or CAS number",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			opts := catalog.Options{Limit: cfg.Catalog.SearchLimit}
			if cmd.Flags().Changed("limit") {
				opts.Limit = limit
			}
			if typeFlag != "" {
				typ, ok := formulation.ParseIngredientType(typeFlag)
				if !ok {
					return fmt.Errorf("invalid ingredient type %q (want support or aromatic)", typeFlag)
				}
				opts.Type = typ
			}
			entries := cat.Search(strings.Join(args, " "), opts)
			if asJSON {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No catalog entry matches")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				source := ""
				if e.IsExtract {
					source = e.ExtractSource
				}
				rows = append(rows, []string{
					e.Reference, e.Name, string(e.Type), string(e.Classification), source,
					formatMoney(e.Price), formatNumber(e.Density), formatNumber(e.VanillinRate), e.CAS,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Ref", "Name", "Type", "Origin", "Extract of", "Price/kg", "Density", "Vanillin %", "CAS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "Only support or aromatic entries")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCatalogExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the merged catalog as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return catalog.WriteCSV(cmd.OutOrStdout(), cat.Entries())
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := catalog.WriteCSV(file, cat.Entries()); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d entries to %s\n", cat.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (stdout by default)")
	return cmd
}
