// Package tableparse turns raw table regions into normalized cell grids.
package tableparse

import (
	"regexp"
	"strings"

	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

// Confidence assigned when the region itself carries none.
const (
	detectedConfidence = 0.5
	fallbackConfidence = 0.1
)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// ParseRegions converts every raw region into a TableElement. Regions with
// no non-blank lines are dropped. IDs are assigned sequentially from zero
// in region order, so they are stable for a given document.
func ParseRegions(regions []port.RawTableRegion) []domain.TableElement {
	var tables []domain.TableElement
	for _, region := range regions {
		if t, ok := parseRegion(region); ok {
			t.ID = len(tables)
			tables = append(tables, t)
		}
	}
	return tables
}

func parseRegion(region port.RawTableRegion) (domain.TableElement, bool) {
	lines := nonBlankLines(region.Text)
	if len(lines) == 0 {
		return domain.TableElement{}, false
	}

	grid, detected := detectGrid(lines)
	padRagged(grid)

	confidence := fallbackConfidence
	if detected {
		confidence = detectedConfidence
	}
	if region.Confidence != nil {
		confidence = *region.Confidence
	}

	cols := 0
	if len(grid) > 0 {
		cols = len(grid[0])
	}
	return domain.TableElement{
		Page:       region.Page,
		BBox:       region.BBox,
		Confidence: confidence,
		Rows:       len(grid),
		Cols:       cols,
		Grid:       grid,
	}, true
}

// detectGrid tries the separators in priority order: tab, pipe, runs of
// two or more spaces. When none of them split a single line, each line
// becomes a one-cell row and detected is false.
func detectGrid(lines []string) (grid [][]string, detected bool) {
	switch {
	case anyContains(lines, "\t"):
		return splitAll(lines, splitTabs), true
	case anyContains(lines, "|"):
		return splitAll(lines, splitPipes), true
	}
	rows := splitAll(lines, splitSpaces)
	for _, row := range rows {
		if len(row) > 1 {
			return rows, true
		}
	}
	return rows, false
}

func splitAll(lines []string, split func(string) []string) [][]string {
	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		grid = append(grid, split(line))
	}
	return grid
}

func splitTabs(line string) []string {
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// splitPipes handles markdown-style rows: the empty cells produced by a
// leading or trailing pipe are dropped, interior empties are kept.
func splitPipes(line string) []string {
	cells := strings.Split(line, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func splitSpaces(line string) []string {
	cells := multiSpace.Split(strings.TrimSpace(line), -1)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// padRagged extends short rows with empty cells so every row has the
// width of the widest one.
func padRagged(grid [][]string) {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range grid {
		for len(row) < width {
			row = append(row, "")
		}
		grid[i] = row
	}
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func anyContains(lines []string, sub string) bool {
	for _, line := range lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}
