package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/studentaid/disbursement/internal/ecert"
	ierr "github.com/studentaid/disbursement/internal/errors"
	fw "github.com/studentaid/disbursement/internal/fixedwidth"
)

func formatNames() []string {
	names := lo.Keys(ecert.FormatsByName)
	sort.Strings(names)
	return names
}

func decodeCmd() *cobra.Command {
	var (
		formatName string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Validate a fixed-width file against a known format",
		Long: `Decode every line of a local file and print the lines that fail.
The command exits with an error when at least one line could not be decoded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := ecert.FormatsByName[formatName]
			if !ok {
				return ierr.NewErrorf("unknown format %q", formatName).
					WithHintf("Known formats: %s", strings.Join(formatNames(), ", ")).
					Mark(ierr.ErrValidation)
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			decoded, failed := format.DecodeAll(string(content))
			return report(cmd, format, decoded, failed, verbose)
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "File format ("+strings.Join(formatNames(), ", ")+")")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every decoded record")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func report(cmd *cobra.Command, format *fw.Format, decoded []fw.DecodedLine, failed []fw.LineError, verbose bool) error {
	out := cmd.OutOrStdout()

	if verbose {
		for _, line := range decoded {
			fmt.Fprintf(out, "%5d  %-28s %v\n", line.Number, line.Layout.Name, line.Record)
		}
	}

	counts := lo.CountValuesBy(decoded, func(line fw.DecodedLine) string { return line.Layout.Name })
	layouts := lo.Keys(counts)
	sort.Strings(layouts)

	fmt.Fprintf(out, "format: %s\n", format.Name)
	fmt.Fprintf(out, "decoded: %d line(s)\n", len(decoded))
	for _, name := range layouts {
		fmt.Fprintf(out, "  %-28s %d\n", name, counts[name])
	}

	if len(failed) == 0 {
		fmt.Fprintln(out, "errors: none")
		return nil
	}

	fmt.Fprintf(out, "errors: %d line(s)\n", len(failed))
	for _, lineErr := range failed {
		fmt.Fprintf(out, "  %s\n", lineErr.Error())
	}
	return ierr.NewErrorf("%d line(s) could not be decoded", len(failed)).
		Mark(ierr.ErrDecoding)
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the known file formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range formatNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, ecert.FormatsByName[name].Name)
			}
			return nil
		},
	}
}
