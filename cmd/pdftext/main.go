// Command pdftext extracts text from a PDF file and prints it to stdout,
// either as plain space-joined text, spatially reflowed ("pretty") text,
// or a structured per-span debug dump.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unidoc/pdftext/extractor"
)

var (
	password string
	format   string
)

var rootCmd = &cobra.Command{
	Use:   "pdftext FILE",
	Short: "Extract text from PDF files",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "password for encrypted PDFs")
	rootCmd.Flags().StringVarP(&format, "format", "f", "plain", "output format: plain, pretty, or debug")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	switch format {
	case "plain", "pretty", "debug":
	default:
		return fmt.Errorf("unknown format %q: must be plain, pretty, or debug", format)
	}

	builder := extractor.NewExtractorBuilder()
	if password != "" {
		builder.Password(password)
	}

	ext, err := builder.FromPath(path)
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", path, err)
	}

	output, err := ext.Extract()
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", path, err)
	}

	switch format {
	case "plain":
		fmt.Print(output.String())
	case "pretty":
		fmt.Print(output.ToStringPretty())
	case "debug":
		printDebug(output)
	}
	return nil
}

func printDebug(output *extractor.TextOutput) {
	for lineIdx, line := range output.Lines() {
		if len(line) == 0 {
			fmt.Printf("Line %d: (empty)\n", lineIdx)
			continue
		}
		fmt.Printf("Line %d:\n", lineIdx)
		for spanIdx, span := range line {
			fmt.Printf("  Span %d: %q\n", spanIdx, span.Text)
			fmt.Printf("    BBox: {T:%.2f R:%.2f B:%.2f L:%.2f}\n", span.BBox.T, span.BBox.R, span.BBox.B, span.BBox.L)
			fmt.Printf("    Font size: %.1f\n", span.FontSize)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
