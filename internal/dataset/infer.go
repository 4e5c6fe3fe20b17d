package dataset

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the accepted timestamp formats, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// inferColumns assigns a type to each column by scanning every cell in the
// raw (string) rows. A column is numeric only if every cell parses as a
// number; likewise for bool and time. Columns with empty cells stay string,
// so missing data never silently becomes a zero.
func inferColumns(names []string, raw [][]string) []Column {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Type: inferType(raw, i)}
	}
	return cols
}

func inferType(raw [][]string, col int) ColType {
	if len(raw) == 0 {
		return ColString
	}
	isNumber, isBool, isTime := true, true, true
	for _, row := range raw {
		cell := ""
		if col < len(row) {
			cell = strings.TrimSpace(row[col])
		}
		if cell == "" {
			return ColString
		}
		if isNumber {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isNumber = false
			}
		}
		if isBool {
			switch strings.ToLower(cell) {
			case "true", "false":
			default:
				isBool = false
			}
		}
		if isTime {
			if _, ok := parseTime(cell); !ok {
				isTime = false
			}
		}
		if !isNumber && !isBool && !isTime {
			return ColString
		}
	}
	switch {
	case isNumber:
		return ColNumber
	case isBool:
		return ColBool
	case isTime:
		return ColTime
	default:
		return ColString
	}
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// convertRows turns raw string rows into typed values according to the
// inferred column types. Inference guarantees every cell parses.
func convertRows(cols []Column, raw [][]string) [][]Value {
	rows := make([][]Value, len(raw))
	for r, rawRow := range raw {
		row := make([]Value, len(cols))
		for c, col := range cols {
			cell := ""
			if c < len(rawRow) {
				cell = strings.TrimSpace(rawRow[c])
			}
			row[c] = convertCell(col.Type, cell)
		}
		rows[r] = row
	}
	return rows
}

func convertCell(t ColType, cell string) Value {
	switch t {
	case ColNumber:
		f, _ := strconv.ParseFloat(cell, 64)
		return Number(f)
	case ColBool:
		return Boolean(strings.EqualFold(cell, "true"))
	case ColTime:
		tm, _ := parseTime(cell)
		return Timestamp(tm)
	default:
		return String(cell)
	}
}
