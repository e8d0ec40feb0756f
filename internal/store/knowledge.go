package store

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"

	"stock-advisor/internal/models"
)

// LoadKnowledgeIndex loads the knowledge documents from a JSON file. Load
// failure is not fatal: it logs a warning and returns an empty index, which
// the retriever treats as "no knowledge available".
func LoadKnowledgeIndex(path string, logger zerolog.Logger) []models.KnowledgeDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("knowledge index not loaded")
		return nil
	}

	var docs []models.KnowledgeDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("knowledge index malformed")
		return nil
	}

	logger.Info().Int("documents", len(docs)).Msg("knowledge index loaded")
	return docs
}
