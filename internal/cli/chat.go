package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatExitWords = map[string]bool{
	"exit": true,
	"quit": true,
	"退出":   true,
	"再见":   true,
}

func newChatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive advisory session",
		Long: `Start an interactive question and answer session.

Type a question and press enter. Type 'exit', 'quit' or '退出' to leave.`,
		Example: `  advisor chat
  advisor chat --stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Orchestrator == nil {
				NewOutput(cmd).Error("Price store unavailable. Run 'advisor data import' first.")
				return fmt.Errorf("orchestrator not configured")
			}

			stream, _ := cmd.Flags().GetBool("stream")
			return runChatLoop(app, stream)
		},
	}

	cmd.Flags().Bool("stream", true, "stream answers as they are generated")

	return cmd
}

func runChatLoop(app *App, stream bool) error {
	title := color.New(color.FgCyan, color.Bold)
	promptColor := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)

	title.Println("股票咨询助手")
	fmt.Println("可以查询行情、技术指标、历史走势，也可以解释投资概念。")
	dim.Println("输入 exit / quit / 退出 结束会话")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("你> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if chatExitWords[strings.ToLower(query)] {
			fmt.Println("再见！投资有风险，入市需谨慎。")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		answerChat(ctx, app, query, stream)
		cancel()
		fmt.Println()
	}
}

func answerChat(ctx context.Context, app *App, query string, stream bool) {
	assistant := color.New(color.FgCyan)
	assistant.Print("助手> ")

	if stream {
		_, chunks, err := app.Orchestrator.QueryStream(ctx, query)
		if err != nil {
			color.Red("生成回答失败：%v", err)
			return
		}
		for chunk := range chunks {
			fmt.Print(chunk)
		}
		fmt.Println()
		return
	}

	answer := app.Orchestrator.Query(ctx, query)
	fmt.Println(answer.Text)
}
