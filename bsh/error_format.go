package bsh

import (
	"fmt"
	"strconv"
	"strings"
)

func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[pos.Line-1], "\r")
	width := len([]rune(lineText))

	column := max(pos.Column, 1)
	column = min(column, width+1)

	lineLabel := strconv.Itoa(pos.Line)
	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		lineText,
		strings.Repeat(" ", len(lineLabel)),
		strings.Repeat(" ", column-1),
	)
}
