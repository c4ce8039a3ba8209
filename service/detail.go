package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/google/go-github/v66/github"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
)

// DetailSink receive each aspect of a repository detail as soon as it is fetched
type DetailSink interface {
	SetReadme(html string)
	SetCommits(commits []model.Commit)
	SetIssues(issues []model.Issue)
	SetPullRequests(pulls []model.PullRequest)
	SetReleases(releases []model.Release)
	SetContributors(contributors []model.Contributor)
	SetFileTree(entries []model.FileEntry)
	SetMetadata(metadata *model.Metadata)
	SetLivePreviewURL(url string)
}

// FetchRepositoryDetail load every aspect of the repository detail in parallel
// each aspect is applied to the sink on its own: a failure only leave its own slot with a placeholder
// the sink is expected to be in its placeholder state already
func (s githubService) FetchRepositoryDetail(ctx context.Context, repo model.Repository, sink DetailSink) {
	tasks := []func(ctx context.Context, repo model.Repository, sink DetailSink){
		s.loadReadme,
		s.loadCommits,
		s.loadIssues,
		s.loadPullRequests,
		s.loadReleases,
		s.loadMetadata,
		s.loadContributors,
		s.loadFileTree,
	}

	parallelTasks := s.config.Tasks.MaxParallelTasksAllowed
	if parallelTasks <= 0 {
		parallelTasks = 1
	}

	swg := sizedwaitgroup.New(parallelTasks)

	log.WithFields(log.Fields{
		"repository": repo.FullName,
		"tasks":      len(tasks),
	}).Debug("fetch repository detail")

	for _, task := range tasks {
		swg.Add()

		go func(task func(ctx context.Context, repo model.Repository, sink DetailSink)) {
			defer swg.Done()
			task(ctx, repo, sink)
		}(task)
	}

	swg.Wait()
	log.WithField("repository", repo.FullName).Debug("all repository detail tasks finished")
}

func logDetailError(repo model.Repository, aspect string, err error) {
	log.WithFields(log.Fields{
		"owner":      repo.Owner,
		"repository": repo.Name,
		"aspect":     aspect,
	}).WithError(err).Warning("unable to fetch repository detail, placeholder kept")
}

// loadReadme distinguish a README Github could not serve (non 2xx) from a failed request
func (s githubService) loadReadme(ctx context.Context, repo model.Repository, sink DetailSink) {
	html, err := s.FetchReadme(ctx, repo)
	if err == nil {
		sink.SetReadme(html)
		return
	}

	logDetailError(repo, "readme", err)

	var responseErr *github.ErrorResponse
	if errors.As(err, &responseErr) {
		sink.SetReadme(model.ReadmeUnavailable)
		return
	}

	sink.SetReadme(model.ReadmeFetchError)
}

func (s githubService) loadCommits(ctx context.Context, repo model.Repository, sink DetailSink) {
	commits, err := s.ListCommits(ctx, repo)
	if err != nil {
		logDetailError(repo, "commits", err)
		commits = []model.Commit{}
	}

	sink.SetCommits(commits)
}

func (s githubService) loadIssues(ctx context.Context, repo model.Repository, sink DetailSink) {
	issues, err := s.ListOpenIssues(ctx, repo)
	if err != nil {
		logDetailError(repo, "issues", err)
		issues = []model.Issue{}
	}

	sink.SetIssues(issues)
}

func (s githubService) loadPullRequests(ctx context.Context, repo model.Repository, sink DetailSink) {
	pulls, err := s.ListOpenPullRequests(ctx, repo)
	if err != nil {
		logDetailError(repo, "pullRequests", err)
		pulls = []model.PullRequest{}
	}

	sink.SetPullRequests(pulls)
}

func (s githubService) loadReleases(ctx context.Context, repo model.Repository, sink DetailSink) {
	releases, err := s.ListReleases(ctx, repo)
	if err != nil {
		logDetailError(repo, "releases", err)
		releases = []model.Release{}
	}

	sink.SetReleases(releases)
}

func (s githubService) loadContributors(ctx context.Context, repo model.Repository, sink DetailSink) {
	contributors, err := s.ListContributors(ctx, repo)
	if err != nil {
		logDetailError(repo, "contributors", err)
		contributors = []model.Contributor{}
	}

	sink.SetContributors(contributors)
}

func (s githubService) loadFileTree(ctx context.Context, repo model.Repository, sink DetailSink) {
	entries, err := s.ListContents(ctx, repo, "")
	if err != nil {
		logDetailError(repo, "fileTree", err)
		entries = []model.FileEntry{}
	}

	sink.SetFileTree(entries)
}

// loadMetadata also set the live preview URL when Github Pages are enabled
func (s githubService) loadMetadata(ctx context.Context, repo model.Repository, sink DetailSink) {
	metadata, err := s.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		logDetailError(repo, "metadata", err)
		sink.SetMetadata(nil)
		return
	}

	sink.SetMetadata(metadata)

	if metadata.HasPages {
		sink.SetLivePreviewURL(LivePreviewURL(repo.Owner, repo.Name))
	}
}

// LivePreviewURL is the Github Pages URL of a repository
func LivePreviewURL(owner, name string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", owner, name)
}
