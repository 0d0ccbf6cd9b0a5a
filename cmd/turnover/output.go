package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-turnover/internal/diag"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeTable prints items as a table on a terminal and as CSV otherwise, so
// output piped into other tools stays machine readable.
func writeTable[T any](cmd *cobra.Command, items []T, columns []column[T]) error {
	out := cmd.OutOrStdout()
	_, err := fmt.Fprintln(out, renderTable(items, columns, !isTerminal(out)))
	return err
}

func printWarnings(cmd *cobra.Command, filename string, warnings diag.List) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", filename, w.String())
	}
}
