package output

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by results that print as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// newTableWriter returns a borderless, left-aligned writer. sep separates
// columns; upper turns headers into upper case.
func newTableWriter(w io.Writer, sep string, upper bool) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(upper)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(sep)
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// PrintTable writes data with upper-cased headers, one row per line.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := newTableWriter(w, "", true)
	table.SetHeader(data.Headers())
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// SimpleTable prints "key: value" pairs with aligned values.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	table := newTableWriter(w, ":", false)
	for _, pair := range pairs {
		table.Append(pair[:])
	}
	table.Render()
	return nil
}

// Bytes renders an exact byte count followed by its IEC approximation,
// e.g. "1536 (1.5 KiB)".
func Bytes(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10) + " (" + humanize.IBytes(uint64(n)) + ")"
}
