package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rcliao/convo-notes/internal/extract"
	"github.com/rcliao/convo-notes/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "extract <export.json> <output-dir>",
		Short: "Convert a conversation export to markdown files",
		Long: "Convert every conversation in a JSON export to a markdown file in output-dir. " +
			"Empty, one-sided and message-less conversations are skipped.",
		Args: cobra.ExactArgs(2),
		Run:  runExtract,
	}

	RootCmd.AddCommand(cmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	exportPath, outputDir := args[0], args[1]
	cfg := loadConfig()
	log := newLogger()

	lr := beginRun(cmd, cfg, model.RunExtract, exportPath, log)
	opts := extract.Options{Logger: log}
	if rec := lr.recorder(); rec != nil {
		opts.Recorder = rec
	}

	report, err := extract.New(opts).Run(cmd.Context(), exportPath, outputDir)
	if err != nil {
		lr.finish(cmd, map[string]string{"error": err.Error()})
		exitErr("extract", err)
	}
	lr.finish(cmd, report)

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, report)
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Extracted %s -> %s", exportPath, outputDir)))
	fmt.Fprintln(out, countLine("rendered", report.Rendered, okStyle))
	fmt.Fprintln(out, countLine("filtered", report.Filtered, warnStyle))
	fmt.Fprintln(out, countLine("errors", report.Errored, errStyle))
	fmt.Fprintf(out, "  %-12s %d\n", "total:", report.Total)
	fmt.Fprintf(out, "  %-12s %.1f%%\n", "filter rate:", report.FilterRate)
	for _, reason := range slices.Sorted(maps.Keys(report.Reasons)) {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("    %s: %d", reason, report.Reasons[reason])))
	}
}
