package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/convo-notes/internal/tagger"
	"github.com/rcliao/convo-notes/internal/tags"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate tags in conversation files without calling the tool",
		Args:  cobra.NoArgs,
		Run:   runCheck,
	}

	cmd.Flags().String("dir", "", "Conversations directory (default: conversations_dir from config)")
	cmd.Flags().Bool("issues-only", false, "Only list files with tag issues")

	RootCmd.AddCommand(cmd)
}

type checkResult struct {
	File   string   `json:"file"`
	Tagged bool     `json:"tagged"`
	Tags   []string `json:"tags,omitempty"`
	Issues []string `json:"issues,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) {
	dir, _ := cmd.Flags().GetString("dir")
	issuesOnly, _ := cmd.Flags().GetBool("issues-only")
	if dir == "" {
		dir = loadConfig().ConversationsDir
	}

	files, err := tagger.Files(dir)
	if err != nil {
		exitErr("check", err)
	}

	var results []checkResult
	untagged, withIssues, errored := 0, 0, 0
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			errored++
			results = append(results, checkResult{File: filepath.Base(path), Error: err.Error()})
			continue
		}
		text := string(b)
		tagged, found := tags.AlreadyTagged(text)
		issues := tags.Validate(text)
		if !tagged {
			untagged++
		}
		if len(issues) > 0 {
			withIssues++
		}
		if issuesOnly && len(issues) == 0 {
			continue
		}
		results = append(results, checkResult{File: filepath.Base(path), Tagged: tagged, Tags: found, Issues: issues})
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		printJSON(out, map[string]any{
			"total":       len(files),
			"untagged":    untagged,
			"with_issues": withIssues,
			"errors":      errored,
			"files":       results,
		})
		return
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(out, "%s %s (%s)\n", errStyle.Render("error   "), r.File, r.Error)
			continue
		}
		status := okStyle.Render("ok      ")
		switch {
		case len(r.Issues) > 0:
			status = warnStyle.Render("issues  ")
		case !r.Tagged:
			status = dimStyle.Render("untagged")
		}
		fmt.Fprintf(out, "%s %s %v\n", status, r.File, r.Tags)
		for _, issue := range r.Issues {
			fmt.Fprintf(out, "    %s\n", issue)
		}
	}
	fmt.Fprintf(out, "\n%d files, %d untagged, %d with tag issues, %d unreadable\n", len(files), untagged, withIssues, errored)
}
