package main

import (
	"context"
	"fmt"
	"os"

	"propdesk-backend/internal/deal"
	"propdesk-backend/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the deals of one variant to an xlsx workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, _ := cmd.Flags().GetString("variant")
		out, _ := cmd.Flags().GetString("out")

		desc, ok := deal.Lookup(models.DealVariant(variant))
		if !ok {
			return fmt.Errorf("unknown variant %q (income, brokerage or resale)", variant)
		}
		if out == "" {
			out = variant + ".xlsx"
		}

		_, db, err := openDB()
		if err != nil {
			return err
		}
		svc := deal.NewService(deal.NewGormStore(db), nil, nil)
		deals, err := svc.List(context.Background(), deal.Filter{Variant: desc.Variant}, deal.NewestFirst)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := deal.WriteWorkbook(f, desc, deals); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		color.Green("Wrote %d %s deals to %s", len(deals), desc.Variant, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("variant", string(models.VariantIncome), "income, brokerage or resale")
	exportCmd.Flags().String("out", "", "output file (default <variant>.xlsx)")
}
