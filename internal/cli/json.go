// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json.go - Structured JSON output for the --json global flag.

package cli

import (
	"encoding/json"
	"os"
	"time"
)

// JSONResponse is the envelope every --json command output uses, so
// scripted consumers get a stable shape across commands.
type JSONResponse struct {
	Command   string      `json:"command"`
	Success   bool        `json:"success"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// printJSON writes one successful response envelope to stdout.
func printJSON(command string, data interface{}) {
	resp := JSONResponse{
		Command:   command,
		Success:   true,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(resp)
}

// printJSONError writes a failed response envelope to stdout.
func printJSONError(command string, err error) {
	resp := JSONResponse{
		Command:   command,
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error:     err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(resp)
}
