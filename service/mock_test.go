package service

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"golang.org/x/time/rate"
)

// endpoints used by the dashboard
var (
	getAuthenticatedUser = githubMock.EndpointPattern{Pattern: "/user", Method: "GET"}
	getOwnRepos          = githubMock.EndpointPattern{Pattern: "/user/repos", Method: "GET"}
	getUserRepos         = githubMock.EndpointPattern{Pattern: "/users/{username}/repos", Method: "GET"}
	getRepo              = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}", Method: "GET"}
	getReadme            = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/readme", Method: "GET"}
	getCommits           = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/commits", Method: "GET"}
	getIssues            = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/issues", Method: "GET"}
	getPulls             = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/pulls", Method: "GET"}
	getReleases          = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/releases", Method: "GET"}
	getContributors      = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/contributors", Method: "GET"}
	getRootContents      = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/contents/", Method: "GET"}
	getContents          = githubMock.EndpointPattern{Pattern: "/repos/{owner}/{repo}/contents/{path}", Method: "GET"}
	getRateLimit         = githubMock.EndpointPattern{Pattern: "/rate_limit", Method: "GET"}
)

// respond always write the same JSON payload
func respond(t *testing.T, payload interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write(githubMock.MustMarshal(payload))

		if err != nil {
			t.Error("unable to configure mock http client")
		}
	}
}

// respondError write a Github error payload with the given status
func respondError(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(fmt.Sprintf(`{"message":"%s"}`, http.StatusText(status))))
	}
}

// newTestService setup a github service using default config, mocked client and a large rate limit
func newTestService(conf *config.Config, options ...githubMock.MockBackendOption) GithubService {
	if conf == nil {
		conf = config.GetDefault()
	}

	mockedHTTPClient := githubMock.NewMockedHTTPClient(options...)
	mockedRateLimiter := rate.NewLimiter(rate.Every(time.Hour), 5000)

	return NewGithubService(*conf, github.NewClient(mockedHTTPClient), mockedRateLimiter)
}

func testRepository(name string) *github.Repository {
	return &github.Repository{
		ID:              github.Int64(int64(len(name))),
		Name:            github.String(name),
		FullName:        github.String("octocat/" + name),
		Owner:           &github.User{Login: github.String("octocat")},
		StargazersCount: github.Int(len(name)),
		Language:        github.String("Go"),
		DefaultBranch:   github.String("main"),
	}
}

func testReadme(markdown string) *github.RepositoryContent {
	return &github.RepositoryContent{
		Name:     github.String("README.md"),
		Encoding: github.String("base64"),
		Content:  github.String(base64.StdEncoding.EncodeToString([]byte(markdown))),
	}
}
