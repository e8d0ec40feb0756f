package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStocksCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List available stocks",
		Long:  "List the stocks available in the local price database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Error("Price store unavailable.")
				return fmt.Errorf("store not configured")
			}

			stocks, err := app.Store.ListStocks(ctx)
			if err != nil {
				output.Error("Failed to list stocks: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stocks)
			}

			if len(stocks) == 0 {
				output.Warning("No stocks found. Run 'advisor data import' to load price data.")
				return nil
			}

			output.Bold("Available stocks (%d)", len(stocks))
			for _, s := range stocks {
				output.Printf("  %-10s %s\n", s.Code, s.Name)
			}
			return nil
		},
	}
}
