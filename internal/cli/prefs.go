package cli

import (
	"fmt"

	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change UI preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	Run: func(cmd *cobra.Command, args []string) {
		p := appInstance.Prefs.Get()
		fmt.Printf("Language: %s\n", p.Language)
		fmt.Printf("Theme:    %s\n", p.Theme)
	},
}

var prefsLanguageCmd = &cobra.Command{
	Use:       "language [code]",
	Short:     "Set the UI language",
	Args:      cobra.ExactArgs(1),
	ValidArgs: i18n.Languages,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Prefs.SetLanguage(args[0]); err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Language set to %s\n", appInstance.Prefs.Get().Language)
		return nil
	},
}

var prefsThemeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Set the UI and export theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if args[0] == "toggle" {
			_, err = appInstance.Prefs.ToggleTheme()
		} else {
			err = appInstance.Prefs.SetTheme(prefs.Theme(args[0]))
		}
		if err != nil {
			return explain(err)
		}
		fmt.Printf("✓ Theme set to %s\n", appInstance.Prefs.Get().Theme)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsLanguageCmd)
	prefsCmd.AddCommand(prefsThemeCmd)
}
