package service

import (
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/google/go-github/v66/github"
)

// toRepository build the dashboard snapshot of a Github repository
func toRepository(r *github.Repository) model.Repository {
	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Owner:           r.GetOwner().GetLogin(),
		Private:         r.GetPrivate(),
		Description:     r.GetDescription(),
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		Language:        r.GetLanguage(),
		UpdatedAt:       r.GetUpdatedAt().Time,
		HTMLURL:         r.GetHTMLURL(),
		Fork:            r.GetFork(),
		Archived:        r.GetArchived(),
		IsTemplate:      r.GetIsTemplate(),
		HasPages:        r.GetHasPages(),
		Homepage:        r.GetHomepage(),
		CloneURL:        r.GetCloneURL(),
		DefaultBranch:   r.GetDefaultBranch(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
	}
}

func toMetadata(r *github.Repository) *model.Metadata {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return &model.Metadata{
		Repository:    toRepository(r),
		Topics:        topics,
		License:       r.GetLicense().GetSPDXID(),
		WatchersCount: r.GetWatchersCount(),
		Visibility:    r.GetVisibility(),
		CreatedAt:     r.GetCreatedAt().Time,
		PushedAt:      r.GetPushedAt().Time,
	}
}

func toCommits(commits []*github.RepositoryCommit) []model.Commit {
	result := make([]model.Commit, 0, len(commits))

	for _, c := range commits {
		author := c.GetAuthor().GetLogin()
		if author == "" {
			author = c.GetCommit().GetAuthor().GetName()
		}

		result = append(result, model.Commit{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
			Author:  author,
			Date:    c.GetCommit().GetAuthor().GetDate().Time,
			HTMLURL: c.GetHTMLURL(),
		})
	}

	return result
}

// toIssues drop pull requests: the issues endpoint returns both
func toIssues(issues []*github.Issue) []model.Issue {
	result := make([]model.Issue, 0, len(issues))

	for _, i := range issues {
		if i == nil || i.IsPullRequest() {
			continue
		}

		labels := make([]string, 0, len(i.Labels))
		for _, l := range i.Labels {
			labels = append(labels, l.GetName())
		}

		result = append(result, model.Issue{
			Number:    i.GetNumber(),
			Title:     i.GetTitle(),
			Author:    i.GetUser().GetLogin(),
			Comments:  i.GetComments(),
			Labels:    labels,
			CreatedAt: i.GetCreatedAt().Time,
			HTMLURL:   i.GetHTMLURL(),
		})
	}

	return result
}

func toPullRequests(pulls []*github.PullRequest) []model.PullRequest {
	result := make([]model.PullRequest, 0, len(pulls))

	for _, p := range pulls {
		result = append(result, model.PullRequest{
			Number:    p.GetNumber(),
			Title:     p.GetTitle(),
			Author:    p.GetUser().GetLogin(),
			Draft:     p.GetDraft(),
			CreatedAt: p.GetCreatedAt().Time,
			HTMLURL:   p.GetHTMLURL(),
		})
	}

	return result
}

func toReleases(releases []*github.RepositoryRelease) []model.Release {
	result := make([]model.Release, 0, len(releases))

	for _, r := range releases {
		result = append(result, model.Release{
			TagName:     r.GetTagName(),
			Name:        r.GetName(),
			Draft:       r.GetDraft(),
			Prerelease:  r.GetPrerelease(),
			PublishedAt: r.GetPublishedAt().Time,
			HTMLURL:     r.GetHTMLURL(),
		})
	}

	return result
}

func toContributors(contributors []*github.Contributor) []model.Contributor {
	result := make([]model.Contributor, 0, len(contributors))

	for _, c := range contributors {
		result = append(result, model.Contributor{
			Login:         c.GetLogin(),
			Contributions: c.GetContributions(),
			AvatarURL:     c.GetAvatarURL(),
			HTMLURL:       c.GetHTMLURL(),
		})
	}

	return result
}

func toFileEntries(contents []*github.RepositoryContent) []model.FileEntry {
	result := make([]model.FileEntry, 0, len(contents))

	for _, c := range contents {
		entryType := model.FileTypeFile
		if c.GetType() == "dir" {
			entryType = model.FileTypeDir
		}

		result = append(result, model.FileEntry{
			Name:    c.GetName(),
			Path:    c.GetPath(),
			Type:    entryType,
			Size:    c.GetSize(),
			HTMLURL: c.GetHTMLURL(),
			URL:     c.GetURL(),
		})
	}

	return result
}
