package sheetview

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatColumnAddress converts a 0-based column index to its column letters
// (0 -> A, 25 -> Z, 26 -> AA, 702 -> AAA).
func FormatColumnAddress(col int) string {
	if col < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// ParseColumnAddress converts column letters back to a 0-based column index
func ParseColumnAddress(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("invalid column address %q", letters)
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column address %q", letters)
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1, nil
}

// FormatRangeA1 formats the half-open rectangle [startRow,endRow) x [startCol,endCol)
// of the named sheet in A1 notation, e.g. ("test", 1, 5, 3, 7) -> 'test'!D2:G5.
func FormatRangeA1(title string, startRow, endRow, startCol, endCol int) string {
	return fmt.Sprintf("%s!%s%d:%s%d",
		quoteSheetTitle(title),
		FormatColumnAddress(startCol), startRow+1,
		FormatColumnAddress(endCol-1), endRow)
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// ParseRangeA1 parses a rectangle in A1 notation back into its sheet title
// and half-open bounds. The sheet part is optional ("B2:C3"); a single cell
// ("'x'!B2") is a 1x1 rectangle.
func ParseRangeA1(s string) (title string, startRow, endRow, startCol, endCol int, err error) {
	ref := s
	if i := strings.LastIndex(s, "!"); i >= 0 {
		title, ref = unquoteSheetTitle(s[:i]), s[i+1:]
	}
	first, last, ok := strings.Cut(ref, ":")
	if !ok {
		last = first
	}
	r1, c1, err := parseCellAddress(first)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	r2, c2, err := parseCellAddress(last)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if r2 < r1 || c2 < c1 {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid range %q: corners out of order", s)
	}
	return title, r1, r2 + 1, c1, c2 + 1, nil
}

// parseCellAddress parses "D2" into 0-based row 1, column 3
func parseCellAddress(cell string) (int, int, error) {
	cell = strings.ReplaceAll(cell, "$", "")
	i := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return 0, 0, fmt.Errorf("invalid cell address %q", cell)
	}
	col, err := ParseColumnAddress(cell[:i])
	if err != nil {
		return 0, 0, err
	}
	row, err := strconv.Atoi(cell[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell address %q", cell)
	}
	return row - 1, col, nil
}

func unquoteSheetTitle(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}
