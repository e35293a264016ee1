package repl

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// padRight pads s with spaces to width terminal cells. CJK runes count as two cells,
// so task lists mixing Chinese and English stay aligned.
//
// padRight 按终端显示列宽补齐空格；中文按两列计算。
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncateCells shortens s to at most width cells, marking the cut with "…".
func truncateCells(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
