package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/FlorianRuen/repo-dashboard/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var (
	reposUser     string
	reposCriteria = model.DefaultFilterCriteria()
	reposNoForks  bool
)

func init() {
	flags := reposCmd.Flags()
	flags.StringVarP(&reposUser, "user", "u", "", "list the repositories of this user instead of the authenticated one")
	flags.StringVarP(&reposCriteria.Query, "query", "q", "", "keep repositories whose name or description contains this text")
	flags.StringVarP(&reposCriteria.Language, "language", "l", model.AllValues, "keep repositories written in this language")
	flags.StringVar((*string)(&reposCriteria.Visibility), "visibility", string(model.VisibilityAll), "all, public or private")
	flags.StringVar((*string)(&reposCriteria.Archived), "archived", string(model.ArchivedAll), "all, archived or active")
	flags.StringVar((*string)(&reposCriteria.Template), "template", string(model.TemplateAll), "all, template or non-template")
	flags.IntVar(&reposCriteria.MinStars, "min-stars", 0, "minimum number of stars")
	flags.IntVar(&reposCriteria.MinForks, "min-forks", 0, "minimum number of forks")
	flags.BoolVar(&reposNoForks, "no-forks", false, "hide forked repositories")
	flags.StringVarP((*string)(&reposCriteria.SortKey), "sort", "s", "", "name, stars, forks, updated or language")
	flags.StringVarP((*string)(&reposCriteria.SortDirection), "direction", "d", string(model.SortDesc), "asc or desc")

	rootCmd.AddCommand(reposCmd)
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories of a user, filtered and sorted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reposCriteria.ShowForks = !reposNoForks

		criteria := reposCriteria.Normalize()
		if err := criteria.Validate(); err != nil {
			return err
		}

		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := openSession(cmd.Context(), a.dashboard); err != nil {
			return err
		}

		if reposUser != "" {
			if err := a.dashboard.SetUsername(reposUser); err != nil {
				return err
			}
		}

		state := a.dashboard.Store()
		state.SetCriteria(criteria)

		if err := a.dashboard.RefreshRepositories(cmd.Context()); err != nil {
			return err
		}

		visible := state.Visible()
		fmt.Fprintln(cmd.OutOrStdout(), repositoriesTable(visible))
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf(
			"%d of %d repositories of %s, up to %d stars",
			len(visible), len(state.Repositories()), state.Session().Username, state.MaxStars(),
		)))

		return nil
	},
}

// openSession log in with the configured or saved token
func openSession(ctx context.Context, dashboard service.DashboardService) error {
	if err := dashboard.RestoreSession(ctx); err != nil {
		return fmt.Errorf("%w: run \"repo-dashboard token save\" or set GITHUB_TOKEN", err)
	}

	return nil
}

func repositoriesTable(repos []model.Repository) string {
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, []string{
			r.FullName,
			r.Language,
			strconv.Itoa(r.StargazersCount),
			strconv.Itoa(r.ForksCount),
			r.UpdatedAt.Format("2006-01-02"),
			repositoryFlags(r),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("REPOSITORY", "LANGUAGE", "STARS", "FORKS", "UPDATED", "FLAGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Render()
}

func repositoryFlags(r model.Repository) string {
	var flags []string

	if r.Private {
		flags = append(flags, "private")
	}

	if r.Fork {
		flags = append(flags, "fork")
	}

	if r.Archived {
		flags = append(flags, "archived")
	}

	if r.IsTemplate {
		flags = append(flags, "template")
	}

	return strings.Join(flags, ",")
}
