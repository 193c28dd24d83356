package wordlist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `{"word": "amicus", "lang_code": "la", "pos": "noun", "senses": [{"glosses": ["friend"]}]}
{"word": "friend", "lang_code": "en", "pos": "noun"}
{"word": "rosa", "lang": "Latin", "pos": "noun"}
{"lang_code": "la", "pos": "name"}
{"word": " amō ", "lang_code": "la", "pos": "verb"}

{"word": "amicus", "lang_code": "la", "pos": "adj"}
{"word": "", "lang_code": "la"}
{"word": "rosa", "lang_code": "la", "pos": "noun"}
`

func TestExtract(t *testing.T) {
	words, err := Extract(t.Context(), strings.NewReader(dump), Plain, "la")
	require.NoError(t, err)
	assert.Equal(t, []string{"amicus", "amō", "rosa"}, words)

	words, err = Extract(t.Context(), strings.NewReader(dump), Plain, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"friend"}, words)

	words, err = Extract(t.Context(), strings.NewReader(dump), Plain, "de")
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestExtract_Compressed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, strings.Split(strings.TrimSpace(dump), "\n"), Zstd))

	words, err := Extract(t.Context(), &buf, Zstd, "la")
	require.NoError(t, err)
	assert.Equal(t, []string{"amicus", "amō", "rosa"}, words)
}

func TestExtract_Malformed(t *testing.T) {
	in := `{"word": "amicus", "lang_code": "la"}` + "\n" +
		`{"word": "rosa", "lang_code" 1}` + "\n" +
		`{"word": "sum", "lang_code": "la"}` + "\n"
	_, err := Extract(t.Context(), strings.NewReader(in), Plain, "la")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Extract(ctx, strings.NewReader(dump), Plain, "la")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw-wiktextract-data.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o600))

	words, err := ExtractFile(t.Context(), path, "la")
	require.NoError(t, err)
	assert.Equal(t, []string{"amicus", "amō", "rosa"}, words)

	_, err = ExtractFile(t.Context(), filepath.Join(t.TempDir(), "none.jsonl"), "la")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
