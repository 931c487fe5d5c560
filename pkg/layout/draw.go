package layout

import (
	"bytes"
	"strings"
)

// Width returns the number of lanes used by rows.
func Width(rows []Row) int {
	width := 0
	for _, r := range rows {
		width = max(width, r.Column+1)
		for _, c := range r.Open {
			width = max(width, c+1)
		}
		for _, c := range r.Transitions {
			width = max(width, c+1)
		}
	}
	return width
}

// Glyphs returns the lane cells of one row, padded to width lanes.
// Lane c occupies cell 2*c; odd cells hold horizontal connectors.
func Glyphs(r Row, width int) []byte {
	cells := bytes.Repeat([]byte{' '}, 2*width-1)
	for _, c := range r.Open {
		cells[2*c] = '|'
	}
	cells[2*r.Column] = '*'

	for _, t := range r.Transitions {
		if t == r.Column {
			continue
		}
		lo, hi := min(t, r.Column), max(t, r.Column)
		for x := 2*lo + 1; x < 2*hi; x++ {
			switch cells[x] {
			case ' ':
				cells[x] = '-'
			case '|':
				cells[x] = '+'
			}
		}
		cells[2*t] = '+'
	}
	return cells
}

// Draw renders rows as text, one line per row: the lane cells, a space, and
// the abbreviated sha.
func Draw(rows []Row) string {
	width := Width(rows)
	var b strings.Builder
	for _, r := range rows {
		b.Write(Glyphs(r, width))
		b.WriteByte(' ')
		b.WriteString(r.Sha.Short())
		b.WriteByte('\n')
	}
	return b.String()
}
