package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/convo-notes/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded extract and tag runs",
		Run:   runRuns,
	}

	cmd.Flags().String("kind", "", "Filter by kind: extract or tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListRunsParams{Kind: kind, Limit: limit})
	if err != nil {
		exitErr("runs", err)
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, runs)
		return
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %-7s  %s  %4d events  %s\n",
			r.ID, r.Kind, r.StartedAt.Local().Format("2006-01-02 15:04"), r.EventCount, r.Source)
		if r.Summary != "" {
			fmt.Fprintln(out, dimStyle.Render("    "+r.Summary))
		}
	}
}
