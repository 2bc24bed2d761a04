package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags across tagged files, most used first",
		Run:   runTags,
	}

	RootCmd.AddCommand(cmd)
}

func runTags(cmd *cobra.Command, args []string) {
	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	counts, err := s.TagCounts(cmd.Context())
	if err != nil {
		exitErr("tags", err)
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, counts)
		return
	}
	if len(counts) == 0 {
		fmt.Fprintln(out, "No tags yet. Run 'convo-notes tag' first.")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(out, "%5d  %s\n", c.Count, c.Tag)
	}
}
