// Package window maps a scroll position to the rows a renderer must draw.
package window

import "math"

// Window is the visible index range [StartIndex, EndIndex) plus the full
// scrollable height.
type Window struct {
	StartIndex  int     `json:"start_index"`
	EndIndex    int     `json:"end_index"`
	TotalHeight float64 `json:"total_height"`
}

// Len returns the number of rows in the window.
func (w Window) Len() int { return w.EndIndex - w.StartIndex }

// Contains reports whether row i is inside the window.
func (w Window) Contains(i int) bool { return i >= w.StartIndex && i < w.EndIndex }

// Compute returns the window for a list of totalCount rows of itemHeight
// pixels scrolled to scrollOffset, showing viewportCount rows with bufferSize
// extra rows on each side. The result always satisfies
// 0 <= StartIndex <= EndIndex <= totalCount.
func Compute(totalCount int, itemHeight, scrollOffset float64, viewportCount, bufferSize int) Window {
	if totalCount < 0 {
		totalCount = 0
	}
	if viewportCount < 0 {
		viewportCount = 0
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	w := Window{TotalHeight: float64(totalCount) * itemHeight}
	if itemHeight <= 0 || math.IsNaN(scrollOffset) || scrollOffset < 0 {
		scrollOffset = 0
	}

	first := 0
	if itemHeight > 0 {
		first = int(math.Floor(scrollOffset / itemHeight))
	}
	w.StartIndex = clamp(first-bufferSize, 0, totalCount)
	w.EndIndex = clamp(w.StartIndex+viewportCount+2*bufferSize, w.StartIndex, totalCount)
	return w
}

// MaxOffset is the largest scroll offset that still shows the last row at
// the bottom of a viewport of viewportCount rows.
func MaxOffset(totalCount int, itemHeight float64, viewportCount int) float64 {
	rows := totalCount - viewportCount
	if rows <= 0 || itemHeight <= 0 {
		return 0
	}
	return float64(rows) * itemHeight
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
