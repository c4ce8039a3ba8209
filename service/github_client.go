package service

import (
	"context"
	"time"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// authenticated requests, used when the current limits can't be loaded
const defaultHourlyRateLimit = 5000

// GithubServiceFactory build a Github service acting on behalf of the token owner
type GithubServiceFactory func(ctx context.Context, token string) (GithubService, error)

// NewGithubClient setup a go-github client sending the token as a bearer authorization header
func NewGithubClient(cfg config.GithubConfig, token string) (*github.Client, error) {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))

	httpClient.Timeout = cfg.RequestTimeout
	githubClient := github.NewClient(httpClient)

	if cfg.BaseURL != "" {
		return githubClient.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
	}

	return githubClient, nil
}

// NewRateLimiter setup the local rate limiter from the current Github rate limits
// consume X tokens according to the number of remaining requests
// this help us to have a right rate limiter even if external requests are made with the same token
func NewRateLimiter(ctx context.Context, githubClient *github.Client) *rate.Limiter {
	log.Debug("loading current rate limit from github")

	rateLimits, _, err := githubClient.RateLimit.Get(ctx)
	if err != nil || rateLimits.GetCore() == nil || rateLimits.GetCore().Limit <= 0 {
		log.WithError(err).Warning("unable to load current github rate limits, using defaults")
		return newHourlyLimiter(defaultHourlyRateLimit, defaultHourlyRateLimit)
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	return newHourlyLimiter(rateLimits.Core.Limit, rateLimits.Core.Remaining)
}

// newHourlyLimiter refill limit requests per hour, with only remaining requests available right now
func newHourlyLimiter(limit, remaining int) *rate.Limiter {
	limiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(limit)), limit)

	if used := limit - remaining; used > 0 {
		limiter.AllowN(time.Now(), used)
	}

	return limiter
}

// NewGithubServiceFactory is the factory used outside of tests
func NewGithubServiceFactory(cfg config.Config) GithubServiceFactory {
	return func(ctx context.Context, token string) (GithubService, error) {
		githubClient, err := NewGithubClient(cfg.Github, token)
		if err != nil {
			return nil, err
		}

		return NewGithubService(cfg, githubClient, NewRateLimiter(ctx, githubClient)), nil
	}
}
