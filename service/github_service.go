package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/google/go-github/v66/github"

	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

const defaultPageSize = 100

type GithubService interface {
	FetchAuthenticatedUser(ctx context.Context) (string, error)
	ListOwnRepositories(ctx context.Context) ([]model.Repository, error)
	ListUserRepositories(ctx context.Context, username string) ([]model.Repository, error)
	GetRepository(ctx context.Context, owner, name string) (*model.Metadata, error)

	FetchReadme(ctx context.Context, repo model.Repository) (string, error)
	ListCommits(ctx context.Context, repo model.Repository) ([]model.Commit, error)
	ListOpenIssues(ctx context.Context, repo model.Repository) ([]model.Issue, error)
	ListOpenPullRequests(ctx context.Context, repo model.Repository) ([]model.PullRequest, error)
	ListReleases(ctx context.Context, repo model.Repository) ([]model.Release, error)
	ListContributors(ctx context.Context, repo model.Repository) ([]model.Contributor, error)
	ListContents(ctx context.Context, repo model.Repository, path string) ([]model.FileEntry, error)

	FetchRepositoryDetail(ctx context.Context, repo model.Repository, sink DetailSink)

	HandleRequestErrors(err error) error
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	config            config.Config
}

// every call to Github consume one request from the local rate limiter
// the limiter is seeded with the remaining requests of the token (see NewRateLimiter)
// so the dashboard stop calling Github before receiving rate limit errors
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}
}

// allow consume n requests from the local rate limiter
func (s githubService) allow(n int) error {
	if !s.githubRateLimiter.AllowN(time.Now(), n) {
		log.Warning("the Github rate limit has been reached. wait until the limit reset")
		return model.ErrRateLimitReached
	}

	return nil
}

func (s githubService) FetchAuthenticatedUser(ctx context.Context) (string, error) {
	if err := s.allow(1); err != nil {
		return "", err
	}

	user, _, err := s.githubClient.Users.Get(ctx, "")
	if err != nil {
		return "", s.HandleRequestErrors(err)
	}

	if user.GetLogin() == "" {
		return "", model.ErrUnauthorized
	}

	return user.GetLogin(), nil
}

// ListOwnRepositories list every repository of the authenticated user, including private ones
func (s githubService) ListOwnRepositories(ctx context.Context) ([]model.Repository, error) {
	log.Info("fetch repositories of the authenticated user")

	return s.paginate(ctx, func(opts github.ListOptions) ([]*github.Repository, error) {
		repos, _, err := s.githubClient.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
			Visibility:  "all",
			ListOptions: opts,
		})

		return repos, err
	})
}

// ListUserRepositories list the public repositories of another user
func (s githubService) ListUserRepositories(ctx context.Context, username string) ([]model.Repository, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	}

	log.WithField("username", username).Info("fetch public repositories of user")

	return s.paginate(ctx, func(opts github.ListOptions) ([]*github.Repository, error) {
		repos, _, err := s.githubClient.Repositories.ListByUser(ctx, username, &github.RepositoryListByUserOptions{
			ListOptions: opts,
		})

		return repos, err
	})
}

// paginate request pages until a page is shorter than the page size (an empty page included)
func (s githubService) paginate(ctx context.Context, list func(opts github.ListOptions) ([]*github.Repository, error)) ([]model.Repository, error) {
	perPage := s.config.Github.PageSize
	if perPage <= 0 {
		perPage = defaultPageSize
	}

	repositories := make([]model.Repository, 0)

	for page := 1; ; page++ {
		if err := s.allow(1); err != nil {
			return nil, err
		}

		batch, err := list(github.ListOptions{Page: page, PerPage: perPage})
		if err != nil {
			return nil, s.HandleRequestErrors(err)
		}

		for _, r := range batch {
			if r == nil || r.Name == nil {
				log.Debug("repository found with invalid information. skipped")
				continue
			}

			repositories = append(repositories, toRepository(r))
		}

		log.WithFields(log.Fields{
			"page":       page,
			"pageLength": len(batch),
			"total":      len(repositories),
		}).Debug("repositories page fetched")

		if len(batch) < perPage {
			break
		}
	}

	return repositories, nil
}

func (s githubService) GetRepository(ctx context.Context, owner, name string) (*model.Metadata, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	repo, _, err := s.githubClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toMetadata(repo), nil
}

// FetchReadme return the README rendered to HTML
// relative images are resolved against the default branch of the repository
func (s githubService) FetchReadme(ctx context.Context, repo model.Repository) (string, error) {
	if err := s.allow(1); err != nil {
		return "", err
	}

	readme, _, err := s.githubClient.Repositories.GetReadme(ctx, repo.Owner, repo.Name, nil)
	if err != nil {
		return "", s.HandleRequestErrors(err)
	}

	// decode base64 content
	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrFetch, err)
	}

	baseURL := ReadmeBaseURL(repo.Owner, repo.Name, repo.DefaultBranch)
	return RenderMarkdown(RewriteRelativePaths(content, baseURL)), nil
}

func (s githubService) ListCommits(ctx context.Context, repo model.Repository) ([]model.Commit, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	commits, _, err := s.githubClient.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: s.config.Github.CommitsLimit},
	})

	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toCommits(commits), nil
}

func (s githubService) ListOpenIssues(ctx context.Context, repo model.Repository) ([]model.Issue, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	issues, _, err := s.githubClient.Issues.ListByRepo(ctx, repo.Owner, repo.Name, &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: s.config.Github.IssuesLimit},
	})

	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toIssues(issues), nil
}

func (s githubService) ListOpenPullRequests(ctx context.Context, repo model.Repository) ([]model.PullRequest, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	pulls, _, err := s.githubClient.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: s.config.Github.PullRequestsLimit},
	})

	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toPullRequests(pulls), nil
}

func (s githubService) ListReleases(ctx context.Context, repo model.Repository) ([]model.Release, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	releases, _, err := s.githubClient.Repositories.ListReleases(ctx, repo.Owner, repo.Name, &github.ListOptions{
		PerPage: s.config.Github.ReleasesLimit,
	})

	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toReleases(releases), nil
}

func (s githubService) ListContributors(ctx context.Context, repo model.Repository) ([]model.Contributor, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	contributors, _, err := s.githubClient.Repositories.ListContributors(ctx, repo.Owner, repo.Name, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: s.config.Github.ContributorsLimit},
	})

	if err != nil {
		return nil, s.HandleRequestErrors(err)
	}

	return toContributors(contributors), nil
}

// ListContents return the entries of a directory, the root directory when path is empty
func (s githubService) ListContents(ctx context.Context, repo model.Repository, path string) ([]model.FileEntry, error) {
	if err := s.allow(1); err != nil {
		return nil, err
	}

	file, directory, _, err := s.githubClient.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		if errors.Is(err, github.ErrPathForbidden) {
			return nil, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
		}

		return nil, s.HandleRequestErrors(err)
	}

	if file != nil {
		return nil, fmt.Errorf("%w: %s is not a directory", model.ErrInvalidInput, path)
	}

	return toFileEntries(directory), nil
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
// the Github error is kept in the chain so callers can still inspect the response
func (s githubService) HandleRequestErrors(err error) error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			return fmt.Errorf("%w: %w", model.ErrRateLimiter, err)
		}

		log.Warning("the Github rate limit has been reached. wait until the limit reset")
		return fmt.Errorf("%w: %w", model.ErrRateLimitReached, err)
	}

	var responseErr *github.ErrorResponse
	if errors.As(err, &responseErr) && responseErr.Response != nil {
		switch responseErr.Response.StatusCode {
		case http.StatusUnauthorized:
			log.Warning("Github rejected the token")
			return fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", model.ErrNotFound, err)
		}
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return fmt.Errorf("%w: %w", model.ErrFetch, err)
}
