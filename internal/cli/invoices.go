package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage saved invoices",
	Long:  `List, show, create, delete and export the invoices of the signed-in account.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved invoices, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := appInstance.List.Activate(ctx); err != nil {
			return explain(err)
		}
		invoices := appInstance.List.Invoices()

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-8s %-15s %-24s %-10s %16s  %s\n", "ID", "Number", "Client", "Due", "Total", "Updated")
		fmt.Println(strings.Repeat("-", 96))

		for _, inv := range invoices {
			fmt.Printf("%-8s %-15s %-24s %-10s %16s  %s\n",
				shortID(inv.ID),
				truncate(inv.InvoiceNumber, 15),
				truncate(inv.To.Name, 24),
				inv.DueDate.String(),
				domain.FormatAmount(domain.ComputeTotals(inv).Total, inv.Currency),
				inv.UpdatedAt.Local().Format("2006-01-02 15:04"),
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print an invoice as text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Print(export.Text(appInstance.Render(inv)))
		return nil
	},
}

var invoicesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create and save an invoice from the configured template",
	Long: `Create an invoice from the configured defaults, override any field with
flags, and save it.

Examples:
  invoicer invoices new --number INV-042 --client "Acme" --item "Design:10:95"
  invoicer invoices new --currency USD --tax 0 --item "Hosting:1:20" --item "Support:2.5:80"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ed := appInstance.Editor
		ed.Reset()

		fields := []struct {
			flag, path string
		}{
			{"number", service.FieldInvoiceNumber},
			{"date", service.FieldDate},
			{"due", service.FieldDueDate},
			{"client", service.FieldToName},
			{"client-email", service.FieldToEmail},
			{"client-address", service.FieldToAddress},
			{"currency", service.FieldCurrency},
			{"tax", service.FieldTaxRate},
			{"notes", service.FieldNotes},
		}
		for _, f := range fields {
			if !cmd.Flags().Changed(f.flag) {
				continue
			}
			value, _ := cmd.Flags().GetString(f.flag)
			if err := ed.SetField(f.path, value); err != nil {
				return explain(err)
			}
		}

		items, _ := cmd.Flags().GetStringArray("item")
		if len(items) > 0 {
			for _, item := range ed.Snapshot().Items {
				if err := ed.RemoveLineItem(item.ID); err != nil {
					return explain(err)
				}
			}
			for _, raw := range items {
				if err := addItem(ed, raw); err != nil {
					return err
				}
			}
		}

		out, err := ed.Save(ctx)
		if err != nil {
			return explain(err)
		}

		fmt.Printf("✓ Invoice saved: %s\n", out.Invoice.InvoiceNumber)
		fmt.Printf("  ID:    %s\n", out.Invoice.ID)
		fmt.Printf("  Total: %s\n", domain.FormatAmount(domain.ComputeTotals(out.Invoice).Total, out.Invoice.Currency))
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if err := appInstance.List.RequestDelete(inv.ID); err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete invoice %s? This cannot be undone.", inv.InvoiceNumber)) {
			appInstance.List.CancelDelete()
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.List.ConfirmDelete(ctx); err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Invoice %s deleted\n", inv.InvoiceNumber)
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export an invoice as PDF or text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		formatStr, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			appInstance.Config.Export.OutputDir = dir
		}
		path, err := appInstance.Export(ctx, inv, format)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Exported to %s\n", path)
		return nil
	},
}

// resolveInvoice finds a saved invoice by full id, unique id prefix or
// invoice number
func resolveInvoice(ctx context.Context, ref string) (domain.Invoice, error) {
	if err := appInstance.List.Activate(ctx); err != nil {
		return domain.Invoice{}, explain(err)
	}

	var matches []domain.Invoice
	for _, inv := range appInstance.List.Invoices() {
		if inv.ID == ref {
			return inv, nil
		}
		if strings.HasPrefix(inv.ID, ref) || inv.InvoiceNumber == ref {
			matches = append(matches, inv)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Invoice{}, fmt.Errorf("invoice not found: %s", ref)
	case 1:
		return matches[0], nil
	}
	return domain.Invoice{}, fmt.Errorf("%q matches %d invoices, use a longer id", ref, len(matches))
}

// addItem parses description:quantity:price. The description may itself
// contain colons.
func addItem(ed *service.Editor, raw string) error {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 {
		return fmt.Errorf("invalid item %q, expected description:quantity:price", raw)
	}
	n := len(parts)
	parts = []string{strings.Join(parts[:n-2], ":"), parts[n-2], parts[n-1]}

	id := ed.AddLineItem()
	updates := []struct {
		field service.LineItemField
		value string
	}{
		{service.ItemDescription, parts[0]},
		{service.ItemQuantity, parts[1]},
		{service.ItemPrice, parts[2]},
	}
	for _, u := range updates {
		if err := ed.UpdateLineItem(id, u.field, u.value); err != nil {
			return explain(err)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesNewCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)

	// New flags
	invoicesNewCmd.Flags().String("number", "", "Invoice number")
	invoicesNewCmd.Flags().String("date", "", "Invoice date (YYYY-MM-DD)")
	invoicesNewCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	invoicesNewCmd.Flags().String("client", "", "Client name")
	invoicesNewCmd.Flags().String("client-email", "", "Client email")
	invoicesNewCmd.Flags().String("client-address", "", "Client address, comma separated lines")
	invoicesNewCmd.Flags().String("currency", "", "Currency code (USD, EUR, GBP, JPY, VND)")
	invoicesNewCmd.Flags().String("tax", "", "Tax rate in percent")
	invoicesNewCmd.Flags().String("notes", "", "Notes printed at the bottom")
	invoicesNewCmd.Flags().StringArray("item", nil, "Line item as description:quantity:price (repeatable)")

	// Delete flags
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	// Export flags
	invoicesExportCmd.Flags().StringP("format", "f", "pdf", "Output format (pdf, txt)")
	invoicesExportCmd.Flags().String("dir", "", "Output directory (defaults to export.output_dir)")
}
