package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"auditease-backend/analysis"
	"auditease-backend/standards"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractCmd runs the extractor on a saved model response
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Run the resilient extractor on a raw model response",
	Long: `Read a raw model response from a file (or stdin when no file or "-" is
given) and print the extracted analysis as JSON. Useful for replaying
responses that produced unexpected audits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		return runExtract(in, cmd.OutOrStdout(), logger)
	},
}

func runExtract(in io.Reader, out io.Writer, logger *zap.Logger) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	result := analysis.NewExtractor(logger).Extract(string(raw))
	if analysis.IsFallback(result) {
		logger.Warn("response could not be parsed, showing the fallback result")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// standardsCmd lists the preset catalog
var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "List the built-in compliance standards",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listStandards(cmd.OutOrStdout())
	},
}

func listStandards(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tKEY REQUIREMENTS")
	for _, s := range standards.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, strings.Join(s.KeyRequirements, "; "))
	}
	return w.Flush()
}
