package ingest

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		out[i] = json.RawMessage(item)
	}
	return out
}

func TestNormalizeShapes(t *testing.T) {
	tests := []struct {
		name      string
		item      string
		wantID    string
		wantRoles []string
	}{
		{
			name: "native schema",
			item: `{"conversation_id":"c1","created_at":"2024-03-10T10:00:00Z",
				"conversation":[{"role":"User","content":"hi"},{"role":"Assistant","content":"hello"}]}`,
			wantID:    "c1",
			wantRoles: []string{"User", "Assistant"},
		},
		{
			name:      "messages list",
			item:      `{"id":"c2","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`,
			wantID:    "c2",
			wantRoles: []string{"user", "assistant"},
		},
		{
			name:      "dialog alternation",
			item:      `{"id":"c3","dialog":["how much?","fifty dollars","deal"]}`,
			wantID:    "c3",
			wantRoles: []string{"User", "Assistant", "User"},
		},
		{
			name:      "question answer pair",
			item:      `{"id":"c4","user":"what time do you open?","text":"we open at nine"}`,
			wantID:    "c4",
			wantRoles: []string{"User", "Assistant"},
		},
	}

	loader := NewLoader(Options{}, discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convs := loader.Normalize(raws(tt.item))
			require.Len(t, convs, 1)
			assert.Equal(t, tt.wantID, convs[0].ID)
			var roles []string
			for _, m := range convs[0].Messages {
				roles = append(roles, m.Role)
			}
			assert.Equal(t, tt.wantRoles, roles)
		})
	}
}

func TestNormalizeSkipsUnrecognized(t *testing.T) {
	loader := NewLoader(Options{}, discardLogger())
	convs := loader.Normalize(raws(
		`{"foo":"bar"}`,
		`"just a string"`,
		`{"dialog":["hi","hello"]}`,
	))
	require.Len(t, convs, 1)
	assert.Len(t, convs[0].Messages, 2)
}

func TestNormalizeMessageCountFilter(t *testing.T) {
	loader := NewLoader(Options{MinMessages: 2, MaxMessages: 3}, discardLogger())
	convs := loader.Normalize(raws(
		`{"dialog":["one"]}`,
		`{"id":"keep","dialog":["one","two"]}`,
		`{"dialog":["one","two","three","four"]}`,
	))
	require.Len(t, convs, 1)
	assert.Equal(t, "keep", convs[0].ID)
}

func TestNormalizeRoleTransfer(t *testing.T) {
	loader := NewLoader(Options{
		AssistantToUser: []string{"forwarded from customer"},
	}, discardLogger())

	convs := loader.Normalize(raws(
		`{"messages":[
			{"role":"user","content":"hi"},
			{"role":"assistant","content":"forwarded from customer: is it in stock?"},
			{"role":"assistant","content":"yes it is"}]}`,
	))
	require.Len(t, convs, 1)
	assert.Equal(t, "User", convs[0].Messages[1].Role)
	assert.Equal(t, "assistant", convs[0].Messages[2].Role)
}

func TestLoadPathFileAndDir(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.json")
	batch := filepath.Join(dir, "batch.json")
	ignored := filepath.Join(dir, "notes.txt")

	require.NoError(t, os.WriteFile(single, []byte(`{"id":"s1","dialog":["hi","hello"]}`), 0o644))
	require.NoError(t, os.WriteFile(batch, []byte(`[{"id":"b1","dialog":["a","b"]},{"id":"b2","dialog":["c","d"]}]`), 0o644))
	require.NoError(t, os.WriteFile(ignored, []byte("not json"), 0o644))

	loader := NewLoader(Options{}, discardLogger())

	convs, err := loader.LoadPath(single)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	convs, err = loader.LoadPath(dir)
	require.NoError(t, err)
	assert.Len(t, convs, 3)

	_, err = loader.LoadPath(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
