package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	headColor  = color.New(color.Bold)
)

const columnGap = "  "

// setColorMode applies --color. auto leaves the terminal detection of the
// color package in charge.
func setColorMode(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q (auto|on|off)", mode)
	}
	return nil
}

// printError writes err one line per joined error, each prefixed in red.
func printError(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		errorColor.Fprint(w, "error: ")
		fmt.Fprintln(w, line)
	}
}

func printWarning(w io.Writer, format string, args ...any) {
	warnColor.Fprint(w, "warning: ")
	fmt.Fprintf(w, format+"\n", args...)
}

// writeTable prints rows under header. The table format pads every column
// but the last to its widest cell, measured in terminal cells so that wide
// runes in paths stay aligned; plain separates cells with tabs and omits
// the header.
func writeTable(w io.Writer, format string, header []string, rows [][]string) {
	if format == FORMAT_PLAIN {
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(row []string) string {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString(columnGap)
		}
		return b.String()
	}
	headColor.Fprintln(w, line(header))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}
