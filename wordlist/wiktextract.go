package wordlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
)

// entry holds the fields of a wiktextract record that Extract reads.
// Pointers tell a missing key from an empty one.
type entry struct {
	Word     *string `json:"word"`
	LangCode *string `json:"lang_code"`
}

// Extract reads a wiktextract JSON Lines dump in the given format and returns
// the headwords of the entries whose lang_code is lang, deduplicated in
// first-seen order. Records missing either key are skipped; a record that
// is not valid JSON fails the extraction.
func Extract(ctx context.Context, r io.Reader, format Format, lang string) ([]string, error) {
	src, closeFn, err := decompress(r, format)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	dec := gojson.NewDecoder(src)
	seen := make(map[string]struct{})
	var words []string
	for n := 1; ; n++ {
		if n%checkEvery == 1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var e entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return words, nil
			}
			return nil, fmt.Errorf("wiktextract: record %d: %w", n, err)
		}
		if e.Word == nil || e.LangCode == nil || *e.LangCode != lang {
			continue
		}

		w := strings.TrimSpace(*e.Word)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
}

// ExtractFile runs Extract on the dump at path, decompressed by extension.
func ExtractFile(ctx context.Context, path, lang string) ([]string, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Extract(ctx, f, FormatOf(path), lang)
}
