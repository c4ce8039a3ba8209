package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show OWNER/NAME",
	Short: "Load and summarize the detail of one repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, name, found := strings.Cut(args[0], "/")
		if !found || owner == "" || name == "" {
			return fmt.Errorf("%w: expected OWNER/NAME, got %q", model.ErrInvalidInput, args[0])
		}

		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := openSession(cmd.Context(), a.dashboard); err != nil {
			return err
		}

		detail, err := a.dashboard.SelectRepository(cmd.Context(), owner, name)
		if err != nil {
			return err
		}

		printDetail(cmd.OutOrStdout(), detail)
		return nil
	},
}

func printDetail(w io.Writer, detail model.RepositoryDetail) {
	repo := detail.Repository

	fmt.Fprintln(w, titleStyle.Render(repo.FullName))
	if repo.Description != "" {
		fmt.Fprintln(w, repo.Description)
	}

	fmt.Fprintln(w, dimStyle.Render(repo.HTMLURL))
	if detail.LivePreviewURL != "" {
		fmt.Fprintln(w, "live preview:", detail.LivePreviewURL)
	}

	if metadata := detail.Metadata; metadata != nil {
		fmt.Fprintf(w, "%s, %d stars, %d forks, %d watchers", metadata.Visibility, metadata.StargazersCount, metadata.ForksCount, metadata.WatchersCount)
		if metadata.License != "" {
			fmt.Fprintf(w, ", %s", metadata.License)
		}

		fmt.Fprintln(w)

		if len(metadata.Topics) > 0 {
			fmt.Fprintln(w, "topics:", strings.Join(metadata.Topics, ", "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Latest commits"))
	for _, commit := range detail.Commits {
		message, _, _ := strings.Cut(commit.Message, "\n")
		fmt.Fprintf(w, "  %s %s %s\n", dimStyle.Render(shortSHA(commit.SHA)), message, dimStyle.Render(commit.Author))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d open issues, %d open pull requests, %d releases, %d contributors\n",
		len(detail.Issues), len(detail.PullRequests), len(detail.Releases), len(detail.Contributors))

	if len(detail.Releases) > 0 {
		fmt.Fprintln(w, "latest release:", detail.Releases[0].TagName)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Files"))
	for _, entry := range detail.FileTree {
		if entry.Type == model.FileTypeDir {
			fmt.Fprintf(w, "  %s/\n", entry.Name)
		} else {
			fmt.Fprintf(w, "  %s\n", entry.Name)
		}
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}

	return sha
}
