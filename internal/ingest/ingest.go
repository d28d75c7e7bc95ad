// Package ingest loads batches of conversation JSON and normalizes the
// assorted shapes found in the wild into the standard schema.
package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/siftlabs/sift/internal/conversation"
)

// Options control normalization and filtering.
type Options struct {
	// MinMessages/MaxMessages drop conversations outside the range.
	// Zero disables the respective bound.
	MinMessages int
	MaxMessages int

	// Role-transfer substring patterns, applied after normalization.
	AssistantToUser []string
	UserToAssistant []string
}

// Loader reads and normalizes conversation batches. Items that cannot be
// normalized are logged and skipped; a batch is only an error when nothing
// can be read at all.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

func NewLoader(opts Options, logger *slog.Logger) *Loader {
	return &Loader{opts: opts, logger: logger}
}

// LoadPath loads conversations from a JSON file or, for a directory, from
// every .json file under it.
func (l *Loader) LoadPath(path string) ([]conversation.Conversation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input path: %w", err)
	}

	var raw []json.RawMessage
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
				return nil
			}
			items, err := readItems(p)
			if err != nil {
				l.logger.Warn("skipping unreadable file", "path", p, "error", err)
				return nil
			}
			raw = append(raw, items...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk input dir: %w", err)
		}
	} else {
		raw, err = readItems(path)
		if err != nil {
			return nil, err
		}
	}

	convs := l.Normalize(raw)
	l.logger.Info("loaded conversations", "path", path, "raw", len(raw), "normalized", len(convs))
	return convs, nil
}

// readItems reads one JSON file holding either a single conversation object
// or an array of them.
func readItems(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []json.RawMessage{single}, nil
}

// Normalize converts raw JSON items into standardized conversations,
// applying role transfer and the message-count filter. Unrecognizable
// items are logged and dropped.
func (l *Loader) Normalize(items []json.RawMessage) []conversation.Conversation {
	rules := conversation.TransferRules{
		AssistantToUser: l.opts.AssistantToUser,
		UserToAssistant: l.opts.UserToAssistant,
	}

	var out []conversation.Conversation
	for i, item := range items {
		conv, err := normalizeItem(item)
		if err != nil {
			l.logger.Warn("skipping item", "index", i, "error", err)
			continue
		}
		if !rules.Empty() {
			conv.Messages = rules.Apply(conv.Messages)
		}
		if l.opts.MinMessages > 0 && len(conv.Messages) < l.opts.MinMessages {
			continue
		}
		if l.opts.MaxMessages > 0 && len(conv.Messages) > l.opts.MaxMessages {
			continue
		}
		out = append(out, *conv)
	}
	return out
}
