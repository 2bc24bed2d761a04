package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/convo-notes/internal/config"
	"github.com/rcliao/convo-notes/internal/model"
	"github.com/rcliao/convo-notes/internal/tagger"
	"github.com/rcliao/convo-notes/internal/tool"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add topic tags to conversation files",
		Long: "Run the tagging tool over each markdown file. Files that already carry tags are skipped " +
			"unless --force is set. Any file whose conversation text the tool changed is restored.",
		Args: cobra.NoArgs,
		Run:  runTag,
	}

	cmd.Flags().String("dir", "", "Conversations directory (default: conversations_dir from config)")
	cmd.Flags().Bool("force", false, "Retag files that already have tags")
	cmd.Flags().IntP("limit", "l", 0, "Process at most this many files (0 = all)")
	cmd.Flags().String("backend", "", "Tool backend: command or api (default: from config)")

	RootCmd.AddCommand(cmd)
}

func runTag(cmd *cobra.Command, args []string) {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")
	limit, _ := cmd.Flags().GetInt("limit")
	backend, _ := cmd.Flags().GetString("backend")

	cfg := loadConfig()
	if dir == "" {
		dir = cfg.ConversationsDir
	}
	if backend != "" {
		cfg.Tagging.Backend = backend
		if err := cfg.Validate(); err != nil {
			exitErr("backend", err)
		}
	}
	log := newLogger()

	t, err := newTool(cfg)
	if err != nil {
		exitErr("tool", err)
	}

	log.Info("starting batch tagging", "dir", dir, "force", force, "limit", limit, "backend", cfg.Tagging.Backend)
	lr := beginRun(cmd, cfg, model.RunTag, dir, log)
	opts := tagger.Options{
		Prompt:         cfg.Tagging.Prompt,
		Timeout:        cfg.Tagging.Timeout.Duration,
		CallsPerMinute: cfg.Tagging.CallsPerMinute,
		Force:          force,
		Limit:          limit,
		Logger:         log,
	}
	if rec := lr.recorder(); rec != nil {
		opts.Recorder = rec
	}

	report, err := tagger.New(t, opts).Run(cmd.Context(), dir)
	if err != nil {
		lr.finish(cmd, map[string]string{"error": err.Error()})
		exitErr("tag", err)
	}
	lr.finish(cmd, summarize(report))

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, report)
		return
	}

	for _, res := range report.Results {
		name := filepath.Base(res.File)
		switch res.Outcome {
		case tagger.Accepted:
			fmt.Fprintf(out, "%s %s %v\n", okStyle.Render("tagged  "), name, res.Tags)
		case tagger.Skipped:
			fmt.Fprintf(out, "%s %s %v\n", dimStyle.Render("skipped "), name, res.Tags)
		case tagger.Reverted:
			fmt.Fprintf(out, "%s %s (%s)\n", warnStyle.Render("reverted"), name, res.Error)
		case tagger.Failed:
			fmt.Fprintf(out, "%s %s (%s)\n", errStyle.Render("failed  "), name, res.Error)
		}
		for _, issue := range res.Issues {
			fmt.Fprintf(out, "    %s\n", warnStyle.Render(issue))
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Summary"))
	fmt.Fprintln(out, countLine("accepted", report.Accepted, okStyle))
	fmt.Fprintln(out, countLine("skipped", report.Skipped, dimStyle))
	fmt.Fprintln(out, countLine("reverted", report.Reverted, warnStyle))
	fmt.Fprintln(out, countLine("failed", report.Failed, errStyle))
	fmt.Fprintf(out, "  %-12s %d\n", "total:", report.Total)
}

func newTool(cfg *config.Config) (tool.Tool, error) {
	switch cfg.Tagging.Backend {
	case config.BackendAPI:
		return tool.NewAPI(cfg.Tagging.API.Model, cfg.Tagging.API.MaxTokens)
	default:
		c := cfg.Tagging.Command
		return &tool.Command{Name: c.Name, AllowedTools: c.AllowedTools, Args: c.Args}, nil
	}
}

// summarize drops per-file results from the ledger summary; they are events.
func summarize(r *tagger.Report) map[string]int {
	return map[string]int{
		"total":    r.Total,
		"accepted": r.Accepted,
		"skipped":  r.Skipped,
		"reverted": r.Reverted,
		"failed":   r.Failed,
	}
}
