// Package wordlist reads and writes dictionary word lists.
//
// A word list holds one word per line. Lines are trimmed, blank lines are
// dropped and duplicates keep their first position. Lists may be compressed
// with gzip, zstd or lz4; the format is chosen by file extension.
//
// Extract builds a word list from a wiktextract dump of Wiktionary, one JSON
// record per line, keeping the headwords of a single language.
package wordlist
