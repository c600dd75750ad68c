package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd shows the account decoded from the stored token.
var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show current authenticated account",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRoute: "/whoami"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, _ := a.session.Identity()
		pterm.Printf("👤 Current user: %s\n", id.Subject)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
