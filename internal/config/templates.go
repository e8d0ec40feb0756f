package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Stock Advisor Configuration

[data]
# SQLite database holding the imported price series
db_path = ""
# JSON knowledge index for concept questions
knowledge_path = ""

[llm]
# Language model provider: "mock" or "openai"
provider = "mock"
# Model name used with the openai provider
model = "gpt-4o-mini"
# API key; prefer the OPENAI_API_KEY environment variable
api_key = ""

[server]
# HTTP listen address for 'advisor serve'
addr = ":8000"

[log]
# Log level: debug, info, warn, error
level = "info"
# Also write logs to a rotating file
file = true
`

// createTemplateConfig writes a commented config template so a first run
// leaves something editable behind. Defaults still apply until edited.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
