// Package cli provides the command-line interface for the stock advisor.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-advisor/internal/agent"
	"stock-advisor/internal/config"
	"stock-advisor/internal/logging"
	"stock-advisor/internal/rag"
	"stock-advisor/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-30"
)

// App holds the application dependencies.
type App struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Store        *store.SQLiteStore
	Retriever    *rag.Retriever
	Registry     *agent.Registry
	Router       *agent.Router
	LLM          agent.Client
	Orchestrator *agent.Orchestrator
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Price store first: the tool registry depends on it.
	dataStore, err := store.NewSQLiteStore(cfg.Data.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, data commands will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("db", cfg.Data.DBPath).Msg("SQLite store initialized")
	}

	// Knowledge index is optional; a missing file just leaves concept
	// questions unanswered.
	docs := store.LoadKnowledgeIndex(cfg.Data.KnowledgePath, logger)
	app.Retriever = rag.New(docs, logger)

	if app.Store != nil {
		app.Registry = agent.NewRegistry(app.Store, logger)
	}
	app.Router = agent.NewRouter(logger)

	if cfg.IsMockLLM() {
		app.LLM = agent.NewMockClient()
		logger.Debug().Msg("mock LLM client initialized")
	} else {
		app.LLM = agent.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model, logger)
		logger.Debug().Str("model", cfg.LLM.Model).Msg("OpenAI LLM client initialized")
	}

	if app.Registry != nil {
		app.Orchestrator = agent.NewOrchestrator(app.Router, app.Registry, app.Retriever, app.LLM, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "Stock Advisor - natural language stock analysis CLI",
		Long: `Stock Advisor answers natural language questions about stocks.

It routes each question to price lookups, technical indicator analysis,
historical comparisons or an investment knowledge base, then summarizes
the result with a language model.

Use 'advisor ask' for one-shot questions and 'advisor chat' for a session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-advisor)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newAskCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newStocksCmd(app))
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Stock Advisor v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Data")
			output.Printf("  Database:  %s\n", app.Config.Data.DBPath)
			output.Printf("  Knowledge: %s\n", app.Config.Data.KnowledgePath)
			output.Println()
			output.Bold("Language Model")
			output.Printf("  Provider: %s\n", app.Config.LLM.Provider)
			output.Printf("  Model:    %s\n", app.Config.LLM.Model)
			output.Println()
			output.Bold("Server")
			output.Printf("  Addr: %s\n", app.Config.Server.Addr)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}
