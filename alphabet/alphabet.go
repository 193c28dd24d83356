package alphabet

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/canisaugustinus/latin-leven/model"
)

// Space is the fallback character for runes outside the alphabet.
const Space = ' '

// Builder collects characters in insertion order.
// The zero value is ready to use.
type Builder struct {
	codes map[rune]model.Symbol
	runes []rune
}

// Add appends r if it has not been seen.
func (b *Builder) Add(r rune) {
	if b.codes == nil {
		b.codes = make(map[rune]model.Symbol)
	}
	if _, ok := b.codes[r]; ok {
		return
	}
	b.codes[r] = model.Symbol(len(b.runes))
	b.runes = append(b.runes, r)
}

// AddString adds every rune of s.
func (b *Builder) AddString(s string) {
	for _, r := range s {
		b.Add(r)
	}
}

// Len returns the number of distinct runes added so far.
func (b *Builder) Len() int { return len(b.runes) }

// Build returns the alphabet. Space is added if missing.
func (b *Builder) Build() *Alphabet {
	b.Add(Space)
	a := &Alphabet{
		codes: make(map[rune]model.Symbol, len(b.runes)),
		runes: append([]rune(nil), b.runes...),
	}
	for r, c := range b.codes {
		a.codes[r] = c
	}
	a.space = a.codes[Space]
	return a
}

// Alphabet is an immutable rune/symbol mapping. It is safe for concurrent use.
type Alphabet struct {
	codes map[rune]model.Symbol
	runes []rune
	space model.Symbol
}

// New builds an alphabet whose lowest codes are costRunes, in order,
// followed by space and then the runes of words in first-seen order.
func New(costRunes []rune, words []string) *Alphabet {
	var b Builder
	for _, r := range costRunes {
		b.Add(r)
	}
	b.Add(Space)
	for _, w := range words {
		b.AddString(w)
	}
	return b.Build()
}

// Len returns the number of symbols.
func (a *Alphabet) Len() int { return len(a.runes) }

// Code returns the symbol for r and whether r belongs to the alphabet.
func (a *Alphabet) Code(r rune) (model.Symbol, bool) {
	c, ok := a.codes[r]
	return c, ok
}

// Rune returns the character for s, or utf8.RuneError if s is out of range.
func (a *Alphabet) Rune(s model.Symbol) rune {
	if uint64(s) >= uint64(len(a.runes)) {
		return utf8.RuneError
	}
	return a.runes[s]
}

// Space returns the symbol unknown runes encode to.
func (a *Alphabet) Space() model.Symbol { return a.space }

// Encode maps each rune of word to its symbol. Unknown runes become Space.
func (a *Alphabet) Encode(word string) model.Sequence {
	seq := make(model.Sequence, 0, utf8.RuneCountInString(word))
	for _, r := range word {
		c, ok := a.codes[r]
		if !ok {
			c = a.space
		}
		seq = append(seq, c)
	}
	return seq
}

// EncodeAll encodes each word.
func (a *Alphabet) EncodeAll(words []string) []model.Sequence {
	out := make([]model.Sequence, len(words))
	for i, w := range words {
		out[i] = a.Encode(w)
	}
	return out
}

// EncodeQuery normalizes word and encodes it.
func (a *Alphabet) EncodeQuery(word string) model.Sequence {
	return a.Encode(Normalize(word))
}

// Decode maps symbols back to text.
func (a *Alphabet) Decode(seq model.Sequence) string {
	var sb strings.Builder
	sb.Grow(len(seq))
	for _, s := range seq {
		sb.WriteRune(a.Rune(s))
	}
	return sb.String()
}

// Runes returns the alphabet in code order.
func (a *Alphabet) Runes() []rune {
	return append([]rune(nil), a.runes...)
}

func isLengthMark(r rune) bool {
	return r == '\u0304' || r == '\u0306' // combining macron, combining breve
}

// Normalize strips macrons and breves (ā -> a, Ĕ -> E) and surrounding
// whitespace. Other diacritics are kept.
func Normalize(word string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isLengthMark)), norm.NFC)
	out, _, err := transform.String(t, word)
	if err != nil {
		out = word
	}
	return strings.TrimFunc(out, unicode.IsSpace)
}
