package cost

import (
	"math"
	"unicode"

	"github.com/canisaugustinus/latin-leven/model"
)

// ShiftCost is added to every keyboard substitution that is not an exact
// match, including a plain change of case on the same key.
const ShiftCost = 0.1

var qwertyRows = [...]string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

type keyPos struct {
	x, y float64
}

var qwertyPos = func() map[rune]keyPos {
	pos := make(map[rune]keyPos, 26)
	for r, row := range qwertyRows {
		for c, ch := range row {
			// each row sits half a key further right than the one above
			pos[ch] = keyPos{x: float64(c) + 0.5*float64(r), y: float64(r)}
		}
	}
	return pos
}()

// KeyboardRunes returns the runes covered by the keyboard matrix: every key in
// layout order, lower case followed by upper case.
func KeyboardRunes() []rune {
	out := make([]rune, 0, 2*len(qwertyPos))
	for _, row := range qwertyRows {
		for _, ch := range row {
			out = append(out, ch, unicode.ToUpper(ch))
		}
	}
	return out
}

// KeyDistance returns the cost of typing b instead of a. ok is false when
// either rune is not on the keyboard.
func KeyDistance(a, b rune) (d float64, ok bool) {
	pa, okA := qwertyPos[unicode.ToLower(a)]
	pb, okB := qwertyPos[unicode.ToLower(b)]
	if !okA || !okB {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	return math.Hypot(pa.x-pb.x, pa.y-pb.y) + ShiftCost, true
}

// KeyboardMatrix builds a substitution matrix from key distances.
//
// codeOf maps a rune to its symbol code; runes it does not know are left out.
// The matrix is sized to the largest code among the keyboard runes, so
// alphabets that assign keyboard runes the lowest codes get a compact matrix.
// Cells for pairs that are not both keyboard runes stay zero.
func KeyboardMatrix(codeOf func(rune) (model.Symbol, bool)) Matrix {
	type coded struct {
		r    rune
		code int
	}

	var keys []coded
	size := 0
	for _, r := range KeyboardRunes() {
		code, ok := codeOf(r)
		if !ok {
			continue
		}
		keys = append(keys, coded{r: r, code: int(code)})
		if int(code)+1 > size {
			size = int(code) + 1
		}
	}

	m := make(Matrix, size)
	for i := range m {
		m[i] = make([]float64, size)
	}
	for _, a := range keys {
		for _, b := range keys {
			d, _ := KeyDistance(a.r, b.r)
			m[a.code][b.code] = d
		}
	}
	return m
}
