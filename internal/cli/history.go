package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history <file-or-conversation>",
		Short: "Show recorded outcomes for a file or conversation",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	item := args[0]
	if filepath.Ext(item) == ".md" {
		item = filepath.Base(item)
	}

	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	events, err := s.History(cmd.Context(), item)
	if err != nil {
		exitErr("history", err)
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, events)
		return
	}
	for _, ev := range events {
		fmt.Fprintf(out, "%s  %-9s %v %s\n",
			ev.CreatedAt.Local().Format("2006-01-02 15:04:05"), ev.Outcome, ev.Tags, dimStyle.Render(ev.Detail))
	}
}
