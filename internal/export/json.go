// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// jsonEnvelope wraps the conversation with export metadata so an
// imported file identifies its own provenance.
type jsonEnvelope struct {
	Generator    string              `json:"generator"`
	ExportedAt   time.Time           `json:"exported_at"`
	Conversation *model.Conversation `json:"conversation"`
}

// renderJSON writes the conversation's full local mirror.
func renderJSON(conv *model.Conversation) ([]byte, error) {
	data, err := json.MarshalIndent(jsonEnvelope{
		Generator:    "tradedeck",
		ExportedAt:   time.Now(),
		Conversation: conv,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return append(data, '\n'), nil
}
