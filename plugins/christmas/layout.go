package christmas

import (
	"image"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	layoutMargin = 1
	treeTextGap  = 2
	lineGap      = 1

	// minTreeShown is the smallest tree worth drawing; anything less is dropped.
	minTreeShown = 4
)

// face is a font plus the cell metrics of the glyphs this plugin draws.
type face struct {
	name   string
	font   tinyfont.Fonter
	ascent int // baseline offset from the top of a line
	height int // pixel rows per line, gap excluded
}

func newFace(name string, font tinyfont.Fonter) *face {
	top, bottom := 0, 0
	for i, r := range "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
		info := font.GetGlyph(r).Info()
		y0 := int(info.YOffset)
		y1 := y0 + int(info.Height)
		if i == 0 || y0 < top {
			top = y0
		}
		if i == 0 || y1 > bottom {
			bottom = y1
		}
	}
	return &face{name: name, font: font, ascent: -top, height: bottom - top}
}

func (f *face) width(s string) int {
	_, outbox := tinyfont.LineWidth(f.font, s)
	return int(outbox)
}

func (f *face) blockHeight(lines int) int {
	if lines <= 0 {
		return 0
	}
	return lines*f.height + (lines-1)*lineGap
}

// fonts is the ladder tried from largest to smallest.
var fonts = []*face{
	newFace("proggy-tinysz8", &proggy.TinySZ8pt7b),
	newFace("tomthumb", &tinyfont.TomThumb),
}

// LayoutResult places the tree and the wrapped text on the canvas.
type LayoutResult struct {
	Tree  image.Rectangle
	Text  image.Rectangle
	Lines []string

	face *face
}

// LineHeight is the distance between consecutive text baselines.
func (l LayoutResult) LineHeight() int {
	if l.face == nil {
		return 0
	}
	return l.face.height + lineGap
}

// Font names the chosen font, or "" when nothing fits.
func (l LayoutResult) Font() string {
	if l.face == nil {
		return ""
	}
	return l.face.name
}

// autoTreeSize derives the tree edge from the canvas: 40% of the height,
// capped by the usable width.
func autoTreeSize(width, height int) int {
	size := height * 2 / 5
	if maxW := width - 2*layoutMargin; size > maxW {
		size = maxW
	}
	if size < 0 {
		size = 0
	}
	return size
}

// Layout computes the tree and text rectangles for a canvas.
//
// treeSize is used when it lies in [MinTreeSize, MaxTreeSize]; otherwise the
// size is derived from the canvas. When space is short the tree shrinks first
// (possibly to nothing); text lines are dropped only if the text alone does
// not fit. Both rectangles always lie inside the canvas.
func Layout(width, height, treeSize int, text string) LayoutResult {
	innerW := width - 2*layoutMargin
	innerH := height - 2*layoutMargin
	if innerW <= 0 || innerH <= 0 {
		return LayoutResult{}
	}

	want := autoTreeSize(width, height)
	if treeSize >= MinTreeSize && treeSize <= MaxTreeSize {
		want = treeSize
		if want > innerW {
			want = innerW
		}
	}

	var f *face
	var lines []string
	for _, candidate := range fonts {
		f = candidate
		lines = wrapText(f, text, innerW)
		if f.blockHeight(len(lines))+treeTextGap+MinTreeSize <= innerH {
			break
		}
	}

	textH := f.blockHeight(len(lines))
	if textH > innerH {
		n := (innerH + lineGap) / (f.height + lineGap)
		lines = lines[:n]
		textH = f.blockHeight(n)
	}

	gap := 0
	if len(lines) > 0 {
		gap = treeTextGap
	}
	tree := want
	if room := innerH - textH - gap; tree > room {
		tree = room
	}
	if tree < minTreeShown {
		tree = 0
	}
	if tree == 0 {
		gap = 0
	}

	top := layoutMargin + (innerH-(tree+gap+textH))/2

	res := LayoutResult{Lines: lines, face: f}
	tx := (width - tree) / 2
	res.Tree = image.Rect(tx, top, tx+tree, top+tree)

	textW := 0
	for _, line := range lines {
		if w := f.width(line); w > textW {
			textW = w
		}
	}
	x := (width - textW) / 2
	y := top + tree + gap
	res.Text = image.Rect(x, y, x+textW, y+textH)
	return res
}

// wrapText breaks text into lines no wider than maxW, splitting words that
// are wider than a line at rune boundaries.
func wrapText(f *face, text string, maxW int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		for _, part := range splitWord(f, word, maxW) {
			candidate := part
			if line != "" {
				candidate = line + " " + part
			}
			if f.width(candidate) <= maxW {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = part
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func splitWord(f *face, word string, maxW int) []string {
	if f.width(word) <= maxW {
		return []string{word}
	}
	var parts []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		next := i + size
		if i > start && f.width(word[start:next]) > maxW {
			parts = append(parts, word[start:i])
			start = i
		}
		i = next
	}
	return append(parts, word[start:])
}
