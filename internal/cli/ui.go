// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Theme colors for terminal UI rendering.
var (
	Purple    = lipgloss.Color("99")
	Gray      = lipgloss.Color("245")
	LightGray = lipgloss.Color("241")
	White     = lipgloss.Color("15")
	Teal      = lipgloss.Color("#06ffa5")
)

// Reusable inline styles for compact key-value output.
var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	valueStyle = lipgloss.NewStyle().Foreground(Teal)

	// DimStyle is a muted style for secondary text.
	DimStyle = lipgloss.NewStyle().Foreground(Gray)
)

// Section represents a header with its corresponding rows.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// PrintStyledTable renders a styled table with dynamic column widths.
func PrintStyledTable(
	sections []Section,
) {
	re := lipgloss.NewRenderer(os.Stdout)

	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		termWidth = 120
	}

	for _, section := range sections {
		columnWidths := calculateColumnWidths(section.Headers, section.Rows, 1)

		totalWidth := 0
		for _, width := range columnWidths {
			totalWidth += width
		}

		// Add border/spacing overhead (rough estimate)
		totalWidth += len(columnWidths) * 3

		// If table is too wide, proportionally reduce column widths
		if totalWidth > termWidth-4 {
			scale := float64(termWidth-4) / float64(totalWidth)
			for i := range columnWidths {
				columnWidths[i] = int(float64(columnWidths[i]) * scale)
				if columnWidths[i] < 8 { // minimum readable width
					columnWidths[i] = 8
				}
			}
		}

		var (
			HeaderStyle  = re.NewStyle().Foreground(White).Bold(true).Align(lipgloss.Center)
			CellStyle    = re.NewStyle().PaddingLeft(1)
			OddRowStyle  = CellStyle.Foreground(Gray)
			EvenRowStyle = CellStyle.Foreground(LightGray)
			BorderStyle  = re.NewStyle().Foreground(Purple)
			PaddingStyle = re.NewStyle().Padding(0, 2)
			TitleStyle   = re.NewStyle().Bold(true).Foreground(Purple).PaddingLeft(2).PaddingTop(1)
			ColonStyle   = re.NewStyle().Bold(false)
		)

		if section.Title != "" {
			titleWithColon := TitleStyle.Render(section.Title) + ColonStyle.Render(":")
			fmt.Println(titleWithColon)
		} else {
			fmt.Println()
		}

		t := table.New().
			Border(lipgloss.ThickBorder()).
			BorderStyle(BorderStyle).
			StyleFunc(func(
				row int,
				col int,
			) lipgloss.Style {
				var baseStyle lipgloss.Style
				switch row % 2 {
				case 0:
					baseStyle = EvenRowStyle
				default:
					baseStyle = OddRowStyle
				}

				if col < len(columnWidths) {
					baseStyle = baseStyle.Width(columnWidths[col])
				}

				return baseStyle
			})

		styledHeaders := make([]string, len(section.Headers))
		for i, header := range section.Headers {
			styledHeaders[i] = HeaderStyle.Render(header)
		}
		t.Headers(styledHeaders...)

		t.Rows(section.Rows...)

		fmt.Println(PaddingStyle.Render(t.String()))
	}
}

// kvMinColWidth is the minimum visual width for each key-value column.
// A consistent minimum ensures columns align across consecutive PrintKV calls.
const kvMinColWidth = 20

// PrintKV prints labeled key-value pairs on a single indented line.
// Pairs are padded to equal column widths for alignment.
// Arguments alternate between labels and values: label1, val1, label2, val2, ...
func PrintKV(
	pairs ...string,
) {
	if len(pairs)%2 != 0 || len(pairs) == 0 {
		return
	}

	rendered := make([]string, 0, len(pairs)/2)
	maxWidth := kvMinColWidth
	for i := 0; i < len(pairs); i += 2 {
		pair := labelStyle.Render(pairs[i]+":") + " " + valueStyle.Render(pairs[i+1])
		rendered = append(rendered, pair)
		if w := lipgloss.Width(pair); w > maxWidth {
			maxWidth = w
		}
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, pair := range rendered {
		line.WriteString(pair)
		if i < len(rendered)-1 {
			pad := maxWidth - lipgloss.Width(pair) + 4
			line.WriteString(strings.Repeat(" ", pad))
		}
	}
	fmt.Println(line.String())
}

// FormatList converts []string to a formatted string.
func FormatList(
	list []string,
) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}

// calculateColumnWidths calculates the optimal width for each column based
// on content.
func calculateColumnWidths(
	headers []string,
	rows [][]string,
	minPadding int,
) []int {
	if len(headers) == 0 {
		return []int{}
	}

	widths := make([]int, len(headers))

	for i, header := range headers {
		widths[i] = len(header)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				// For multi-line content, use the width of the longest line
				maxLineWidth := getMaxLineWidth(cell)
				if maxLineWidth > widths[i] {
					widths[i] = maxLineWidth
				}
			}
		}
	}

	for i := range widths {
		widths[i] += minPadding * 2
	}

	return widths
}

// getMaxLineWidth returns the width of the longest line in a multi-line string.
func getMaxLineWidth(
	text string,
) int {
	lines := strings.Split(text, "\n")
	maxWidth := 0
	for _, line := range lines {
		if len(line) > maxWidth {
			maxWidth = len(line)
		}
	}
	return maxWidth
}
