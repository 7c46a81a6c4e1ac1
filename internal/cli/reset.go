package cli

import (
	"context"
	"fmt"

	"github.com/andy/invoicer/internal/domain"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all invoices of the signed-in account",
	Long: `Delete every stored invoice that belongs to the signed-in account.
Accounts and preferences are kept.

Examples:
  invoicer reset          # Asks for confirmation first
  invoicer reset --yes    # No confirmation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, ok := appInstance.Auth.Current()
		if !ok {
			return explain(domain.ErrUnauthenticated)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("This will delete ALL invoices for %s. Continue?", id.Email)) {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := appInstance.Store.DeleteAll(ctx)
		if err != nil {
			return explain(err)
		}
		appInstance.Editor.Reset()

		fmt.Printf("Deleted %d invoice(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
