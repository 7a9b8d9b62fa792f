package mandala

import "math/rand/v2"

// Palette is an ordered, non-empty list of fill colours.
type Palette []Color

func hexPalette(codes ...string) Palette {
	p := make(Palette, len(codes))
	for i, s := range codes {
		p[i] = FromHex(s)
	}
	return p
}

// DefaultPalettes are the curated palettes a session picks from.
var DefaultPalettes = []Palette{
	hexPalette("cb997e", "ddbea9", "ffe8d6", "b7b7a4", "a5a58d", "6b705c"),
	hexPalette("005f73", "0a9396", "94d2bd", "e9d8a6", "ee9b00", "ca6702", "bb3e03", "ae2012"),
	hexPalette("fbf8cc", "fde4cf", "ffcfd2", "f1c0e8", "cfbaf0", "a3c4f3", "90dbf4", "98f5e1"),
	hexPalette("03045e", "023e8a", "0077b6", "0096c7", "00b4d8", "48cae4", "90e0ef", "ade8f4"),
	hexPalette("d8f3dc", "b7e4c7", "95d5b2", "74c69d", "52b788", "40916c", "2d6a4f", "1b4332"),
}

// ChoosePalette picks one of n palettes uniformly.
func ChoosePalette(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	return rng.IntN(n)
}

// PaletteCycler hands out the colours of one palette in turn. It lives for
// a single fill.
type PaletteCycler struct {
	count   int
	palette Palette
}

func NewPaletteCycler(p Palette) *PaletteCycler {
	if len(p) == 0 {
		panic("mandala: empty palette")
	}
	return &PaletteCycler{palette: p}
}

// Next advances the counter and returns palette[count % len]. The first
// call therefore yields palette[1].
func (c *PaletteCycler) Next() Color {
	c.count++
	return c.palette[c.count%len(c.palette)]
}

// Count is the number of colours handed out so far.
func (c *PaletteCycler) Count() int {
	return c.count
}
