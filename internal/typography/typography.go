// package typography maps dish text to a discrete font size so that long
// dish names never overflow the fixed display panel.
package typography

import (
	"unicode/utf8"

	"github.com/desertthunder/menuboard/internal/models"
)

// SizeClass is a named CSS font size step.
type SizeClass string

const (
	Text3XL   SizeClass = "text-3xl"
	Text4XL   SizeClass = "text-4xl"
	Text5XL   SizeClass = "text-5xl"
	Text6XL   SizeClass = "text-6xl"
	Text7XL   SizeClass = "text-7xl"
	Text8XL   SizeClass = "text-8xl"
	Text9XL   SizeClass = "text-9xl"
	Text11Rem SizeClass = "text-11rem"
)

// ordered from smallest to largest
var scale = []struct {
	class SizeClass
	rem   float64
}{
	{Text3XL, 1.875},
	{Text4XL, 2.25},
	{Text5XL, 3},
	{Text6XL, 3.75},
	{Text7XL, 4.5},
	{Text8XL, 6},
	{Text9XL, 8},
	{Text11Rem, 11},
}

// Rem returns the font size in rem units. Unknown classes return 0.
func (c SizeClass) Rem() float64 {
	for _, s := range scale {
		if s.class == c {
			return s.rem
		}
	}
	return 0
}

// Rank orders classes by size; larger classes have a higher rank. Unknown classes rank -1.
func (c SizeClass) Rank() int {
	for i, s := range scale {
		if s.class == c {
			return i
		}
	}
	return -1
}

func (c SizeClass) String() string { return string(c) }

// Bucket is the length category of a dish text.
type Bucket int

const (
	Short Bucket = iota
	Medium
	Long
	Xtra
)

func (b Bucket) String() string {
	switch b {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	default:
		return "xtra"
	}
}

// BucketFor categorizes text by its length in characters.
func BucketFor(text string) Bucket {
	switch n := utf8.RuneCountInString(text); {
	case n < 12:
		return Short
	case n < 25:
		return Medium
	case n < 45:
		return Long
	default:
		return Xtra
	}
}

// EmptyClass is used for empty text.
const EmptyClass = Text6XL

var table = map[models.FontSize][4]SizeClass{
	models.Lvl1: {Text6XL, Text5XL, Text4XL, Text3XL},
	models.Lvl2: {Text7XL, Text6XL, Text5XL, Text3XL},
	models.Lvl3: {Text8XL, Text7XL, Text5XL, Text4XL},
	models.Lvl4: {Text9XL, Text8XL, Text6XL, Text4XL},
	models.Lvl5: {Text11Rem, Text9XL, Text7XL, Text5XL},
}

// SizeClassFor picks the size class for text at the given base level.
//
// Unknown levels are treated as lvl3. Within a level, longer text never gets a larger class.
func SizeClassFor(text string, level models.FontSize) SizeClass {
	if text == "" {
		return EmptyClass
	}
	row, ok := table[level]
	if !ok {
		row = table[models.DefaultFontSize]
	}
	return row[BucketFor(text)]
}
