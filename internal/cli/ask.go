package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newAskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-shot stock question",
		Long: `Ask a natural language question about stocks.

The question is routed to a price lookup, technical analysis, historical
comparison or the investment knowledge base, and the result is summarized
in plain language.`,
		Example: `  advisor ask "比亚迪现在多少钱"
  advisor ask "什么是MACD指标"
  advisor ask "对比一下比亚迪和宁德时代"
  advisor ask --stream "分析一下贵州茅台"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			if app.Orchestrator == nil {
				output.Error("Price store unavailable. Run 'advisor data import' first.")
				return fmt.Errorf("orchestrator not configured")
			}

			query := strings.Join(args, " ")
			stream, _ := cmd.Flags().GetBool("stream")

			if stream && !output.IsJSON() {
				answer, chunks, err := app.Orchestrator.QueryStream(ctx, query)
				if err != nil {
					output.Error("Failed to answer: %v", err)
					return err
				}
				for chunk := range chunks {
					output.Printf("%s", chunk)
				}
				output.Println()
				output.Dim("route=%s tool=%s", answer.Route, answer.Tool)
				return nil
			}

			answer := app.Orchestrator.Query(ctx, query)
			if output.IsJSON() {
				return output.JSON(answer)
			}
			output.Println(answer.Text)
			output.Println()
			output.Dim("route=%s tool=%s", answer.Route, answer.Tool)
			return nil
		},
	}

	cmd.Flags().Bool("stream", false, "stream the answer as it is generated")

	return cmd
}
