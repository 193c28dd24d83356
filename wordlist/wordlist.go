package wordlist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format is a word list compression format.
type Format uint8

const (
	// Plain is uncompressed UTF-8 text.
	Plain Format = iota
	// Gzip is gzip-compressed text (.gz).
	Gzip
	// Zstd is zstd-compressed text (.zst).
	Zstd
	// LZ4 is an lz4 frame (.lz4).
	LZ4
)

func (f Format) String() string {
	switch f {
	case Plain:
		return "plain"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ErrUnknownFormat is returned for an unsupported Format value.
var ErrUnknownFormat = errors.New("wordlist: unknown format")

// maxLine bounds a single line; longer lines fail with bufio.ErrTooLong.
const maxLine = 1 << 20

// checkEvery is the number of lines read between context checks.
const checkEvery = 4096

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return Plain
	}
}

// Load reads the word list at path.
func Load(ctx context.Context, path string) ([]string, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ReadFormat(ctx, f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("wordlist: %s: %w", filepath.Base(path), err)
	}
	return words, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: open: %w", err)
	}
	return f, nil
}

// Read reads an uncompressed word list from r.
func Read(r io.Reader) ([]string, error) {
	return ReadFormat(context.Background(), r, Plain)
}

// ReadFormat reads a word list in the given format from r.
func ReadFormat(ctx context.Context, r io.Reader, format Format) ([]string, error) {
	src, closeFn, err := decompress(r, format)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	seen := make(map[string]struct{})
	var words []string
	for line := 0; sc.Scan(); line++ {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		w := strings.TrimSpace(sc.Text())
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func decompress(r io.Reader, format Format) (io.Reader, func(), error) {
	switch format {
	case Plain:
		return r, func() {}, nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, ErrUnknownFormat
	}
}

// Write writes words one per line to w in the given format.
func Write(w io.Writer, words []string, format Format) error {
	dst, err := compress(w, format)
	if err != nil {
		return err
	}

	if err := writeLines(bufio.NewWriter(dst), words); err != nil {
		// release the compressor's resources; the write error wins
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func writeLines(bw *bufio.Writer, words []string) error {
	for _, word := range words {
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes words to path, compressed according to its extension.
func Save(path string, words []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wordlist: create: %w", err)
	}
	if err := Write(f, words, FormatOf(path)); err != nil {
		_ = f.Close()
		return fmt.Errorf("wordlist: write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func compress(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case Plain:
		return nopCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, ErrUnknownFormat
	}
}
