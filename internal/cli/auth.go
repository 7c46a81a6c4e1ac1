package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/andy/invoicer/internal/config"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your local account",
	Long:  `Create an account, sign in and out, and recover or change your password.`,
}

var authSignUpCmd = &cobra.Command{
	Use:   "signup [email]",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, confirm, err := readNewPassword()
		if err != nil {
			return err
		}
		id, err := appInstance.Auth.SignUp(context.Background(), args[0], password, confirm)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Account created. Signed in as %s\n", id.Email)
		return nil
	},
}

var authSignInCmd = &cobra.Command{
	Use:   "signin [email]",
	Short: "Sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret("Password: ")
		if err != nil {
			return err
		}
		id, err := appInstance.Auth.SignIn(context.Background(), args[0], password)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Signed in as %s\n", id.Email)
		return nil
	},
}

var authSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Auth.SignOut(context.Background()); err != nil {
			return explain(err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var authWhoAmICmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := appInstance.Auth.Current()
		if !ok {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", id.Email, id.UserID)
		return nil
	},
}

var authResetPasswordCmd = &cobra.Command{
	Use:   "reset-password [email]",
	Short: "Recover access to an account",
	Long: `Without --token, writes a recovery token for the account to the outbox
directory. With --token, sets a new password using that token and signs in.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		token, _ := cmd.Flags().GetString("token")

		if token == "" {
			if len(args) == 0 {
				return errors.New("an email address is required to request a reset")
			}
			if err := appInstance.Auth.RequestPasswordReset(ctx, args[0]); err != nil {
				return explain(err)
			}
			fmt.Printf("If an account exists for %s, a reset token has been written to %s\n",
				args[0], filepath.Join(config.Dir(), "outbox"))
			return nil
		}

		password, confirm, err := readNewPassword()
		if err != nil {
			return err
		}
		id, err := appInstance.Auth.CompletePasswordReset(ctx, token, password, confirm)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Password updated. Signed in as %s\n", id.Email)
		return nil
	},
}

var authUpdatePasswordCmd = &cobra.Command{
	Use:   "update-password",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, confirm, err := readNewPassword()
		if err != nil {
			return err
		}
		if err := appInstance.Auth.UpdatePassword(context.Background(), password, confirm); err != nil {
			return explain(err)
		}
		fmt.Println("✓ Password updated.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSignUpCmd)
	authCmd.AddCommand(authSignInCmd)
	authCmd.AddCommand(authSignOutCmd)
	authCmd.AddCommand(authWhoAmICmd)
	authCmd.AddCommand(authResetPasswordCmd)
	authCmd.AddCommand(authUpdatePasswordCmd)

	authResetPasswordCmd.Flags().String("token", "", "Recovery token from the outbox message")
}
