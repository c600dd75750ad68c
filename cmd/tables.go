// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:         "tables",
	Short:       "List the tables you can browse",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRoute: "/tables"},
	RunE: runWithApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		var tables []string
		err := withSpinner("Loading tables", func() (err error) {
			tables, err = a.api.ListTables(ctx, a.session.Token())
			return err
		})
		if err != nil {
			return err
		}
		renderTableList(tables, "")
		return nil
	}),
}

// renderTableList prints table names, highlighting current.
func renderTableList(tables []string, current string) {
	if len(tables) == 0 {
		pterm.Info.Println("No tables available.")
		return
	}
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Tables"))
	items := make([]pterm.BulletListItem, 0, len(tables))
	for _, t := range tables {
		item := pterm.BulletListItem{Level: 0, Text: t}
		if t == current {
			item.TextStyle = pterm.NewStyle(pterm.FgGreen, pterm.Bold)
		}
		items = append(items, item)
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
