package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stock-advisor/internal/store"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage local price data",
	}

	cmd.AddCommand(newDataImportCmd(app))

	return cmd
}

func newDataImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import daily price CSV files into the local database",
		Long: `Import daily price CSV files into the local database.

Each file must be named <name>_<code>.csv and contain daily bars with
date, open, high, low, close and volume columns. Files that fail to
parse are skipped with a warning.`,
		Example: `  advisor data import ./data/daily`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			if app.Store == nil {
				output.Error("Price store unavailable.")
				return fmt.Errorf("store not configured")
			}

			count, err := store.ImportCSVDir(ctx, app.Store, args[0], app.Logger)
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": count})
			}
			output.Success("Imported %d stock(s)", count)
			return nil
		},
	}
}
