// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export command handler for the tradedeck CLI.
//
// Handles the "tradedeck export" command: write a saved conversation
// transcript to the exports directory. Without an ID it lists what is
// available.
//
// Command: export
//
// Examples:
//   tradedeck export                     List saved conversations
//   tradedeck export 4f1c2               Export as markdown
//   tradedeck export 4f1c2 --format json Export as JSON

package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jeranaias/tradedeck/internal/export"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/storage"
)

// HandleExportCommand handles the "export" command.
func HandleExportCommand(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return err
	}

	store, err := storage.NewConversationStoreWithDir(filepath.Join(stateDir, "conversations"))
	if err != nil {
		return WrapError(err, "open conversation store")
	}
	if cfg.Storage.MaxConversations > 0 {
		store.MaxConversations = cfg.Storage.MaxConversations
	}

	if args.Subcommand == "" {
		return listConversations(store, args)
	}

	format, err := export.ParseFormat(args.Format)
	if err != nil {
		return NewValidationErrorWithExample("format", args.Format, err.Error(), "md or json")
	}

	conv, err := loadConversation(store, args.Subcommand)
	if err != nil {
		return err
	}

	path, err := export.WriteTranscript(conv, format, stateDir)
	if err != nil {
		return WrapError(err, "write transcript")
	}

	if args.JSON {
		printJSON("export", map[string]string{"path": path})
		return nil
	}
	if !args.Quiet {
		fmt.Printf("%s exported to %s\n", SuccessStyle.Render("[OK]"), path)
	}
	return nil
}

// loadConversation resolves a key, backend ID, or 1-based list index.
func loadConversation(store *storage.ConversationStore, ref string) (*model.Conversation, error) {
	if conv, err := store.Load(ref); err == nil {
		return conv, nil
	}
	if index, err := strconv.Atoi(ref); err == nil && index > 0 {
		if conv, err := store.LoadByIndex(index); err == nil {
			return conv, nil
		}
	}
	return nil, NewNotFoundError("conversation", ref)
}

// listConversations prints what the store holds.
func listConversations(store *storage.ConversationStore, args Args) error {
	metas, err := store.List()
	if err != nil {
		return WrapError(err, "list conversations")
	}

	if args.JSON {
		printJSON("export.list", metas)
		return nil
	}
	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("no saved conversations"))
		return nil
	}
	fmt.Println(storage.FormatConversationList(metas))
	fmt.Println(DimStyle.Render("export one with: tradedeck export <id>"))
	return nil
}
