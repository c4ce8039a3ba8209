package service

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/FlorianRuen/repo-dashboard/store"
	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// pagedHandler serve pages in order and record every requested page
type pagedHandler struct {
	t         *testing.T
	pages     [][]*github.Repository
	mu        sync.Mutex
	requested []int
	perPage   []string
}

func (h *pagedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 || page > len(h.pages) {
		h.t.Errorf("unexpected page requested: %q", r.URL.Query().Get("page"))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.requested = append(h.requested, page)
	h.perPage = append(h.perPage, r.URL.Query().Get("per_page"))
	_, _ = w.Write(githubMock.MustMarshal(h.pages[page-1]))
}

// TestListRepositoriesPagination test the pagination shared by ListOwnRepositories and ListUserRepositories
func TestListRepositoriesPagination(t *testing.T) {
	tests := []struct {
		name              string
		pages             [][]*github.Repository
		expectedNames     []string
		expectedRequested []int
	}{
		{
			name:              "stops on short page",
			pages:             [][]*github.Repository{{testRepository("a"), testRepository("b")}, {testRepository("c")}},
			expectedNames:     []string{"a", "b", "c"},
			expectedRequested: []int{1, 2},
		},
		{
			name:              "stops on empty page",
			pages:             [][]*github.Repository{{testRepository("a"), testRepository("b")}, {}},
			expectedNames:     []string{"a", "b"},
			expectedRequested: []int{1, 2},
		},
		{
			name:              "single empty page",
			pages:             [][]*github.Repository{{}},
			expectedNames:     []string{},
			expectedRequested: []int{1},
		},
		{
			name: "several full pages",
			pages: [][]*github.Repository{
				{testRepository("a"), testRepository("b")},
				{testRepository("c"), testRepository("d")},
				{testRepository("e")},
			},
			expectedNames:     []string{"a", "b", "c", "d", "e"},
			expectedRequested: []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		for _, own := range []bool{true, false} {
			t.Run(tt.name+" own="+strconv.FormatBool(own), func(t *testing.T) {
				conf := config.GetDefault()
				conf.Github.PageSize = 2

				handler := &pagedHandler{t: t, pages: tt.pages}
				endpoint := getUserRepos
				if own {
					endpoint = getOwnRepos
				}

				svc := newTestService(conf, githubMock.WithRequestMatchHandler(endpoint, handler))

				var repos []model.Repository
				var err error
				if own {
					repos, err = svc.ListOwnRepositories(context.Background())
				} else {
					repos, err = svc.ListUserRepositories(context.Background(), "octocat")
				}

				require.NoError(t, err)

				names := make([]string, 0, len(repos))
				for _, r := range repos {
					names = append(names, r.Name)
				}

				assert.Equal(t, tt.expectedNames, names)
				assert.Equal(t, tt.expectedRequested, handler.requested)

				for _, perPage := range handler.perPage {
					assert.Equal(t, "2", perPage)
				}
			})
		}
	}
}

func TestListOwnRepositoriesRequestsAllVisibilities(t *testing.T) {
	svc := newTestService(nil,
		githubMock.WithRequestMatchHandler(
			getOwnRepos,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "all", r.URL.Query().Get("visibility"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				_, _ = w.Write(githubMock.MustMarshal([]*github.Repository{testRepository("private-one")}))
			}),
		),
	)

	repos, err := svc.ListOwnRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octocat", repos[0].Owner)
	assert.Equal(t, "main", repos[0].DefaultBranch)
}

func TestListRepositoriesErrors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		expectedErr error
	}{
		{name: "server error", handler: respondError(http.StatusInternalServerError), expectedErr: model.ErrFetch},
		{name: "unknown user", handler: respondError(http.StatusNotFound), expectedErr: model.ErrNotFound},
		{name: "bad token", handler: respondError(http.StatusUnauthorized), expectedErr: model.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(nil, githubMock.WithRequestMatchHandler(getUserRepos, tt.handler))

			repos, err := svc.ListUserRepositories(context.Background(), "ghost")
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, repos)
		})
	}

	_, err := newTestService(nil).ListUserRepositories(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestLocalRateLimit(t *testing.T) {
	conf := config.GetDefault()
	mockedHTTPClient := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(getAuthenticatedUser, respond(t, github.User{Login: github.String("octocat")})),
	)

	svc := NewGithubService(*conf, github.NewClient(mockedHTTPClient), rate.NewLimiter(rate.Every(time.Hour), 1))

	username, err := svc.FetchAuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", username)

	_, err = svc.FetchAuthenticatedUser(context.Background())
	assert.ErrorIs(t, err, model.ErrRateLimitReached)
	assert.EqualError(t, err, "RATE_LIMIT_REACHED")
}

func TestFetchReadme(t *testing.T) {
	svc := newTestService(nil,
		githubMock.WithRequestMatchHandler(getReadme, respond(t, testReadme("# Hello\n\n![logo](img/logo.png)\n![badge](https://img.shields.io/x.svg)"))),
	)

	repo := model.Repository{Owner: "octocat", Name: "hello", DefaultBranch: "main"}
	html, err := svc.FetchReadme(context.Background(), repo)

	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hello</h1>")
	assert.Contains(t, html, `src="https://github.com/octocat/hello/blob/main/img/logo.png?raw=true"`)
	assert.Contains(t, html, `src="https://img.shields.io/x.svg"`)
}

func TestListOpenIssuesSkipsPullRequests(t *testing.T) {
	svc := newTestService(nil,
		githubMock.WithRequestMatchHandler(
			getIssues,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "open", r.URL.Query().Get("state"))
				_, _ = w.Write(githubMock.MustMarshal([]*github.Issue{
					{Number: github.Int(1), Title: github.String("bug"), Labels: []*github.Label{{Name: github.String("bug")}}},
					{Number: github.Int(2), Title: github.String("feature"), PullRequestLinks: &github.PullRequestLinks{URL: github.String("https://api.github.com/pulls/2")}},
				}))
			}),
		),
	)

	issues, err := svc.ListOpenIssues(context.Background(), model.Repository{Owner: "octocat", Name: "hello"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, []string{"bug"}, issues[0].Labels)
}

func TestListContents(t *testing.T) {
	svc := newTestService(nil,
		githubMock.WithRequestMatchHandler(getRootContents, respond(t, []*github.RepositoryContent{
			{Name: github.String("cmd"), Path: github.String("cmd"), Type: github.String("dir")},
			{Name: github.String("go.mod"), Path: github.String("go.mod"), Type: github.String("file"), Size: github.Int(120)},
		})),
		githubMock.WithRequestMatchHandler(getContents, respond(t, github.RepositoryContent{
			Name: github.String("go.mod"), Path: github.String("go.mod"), Type: github.String("file"),
		})),
	)

	repo := model.Repository{Owner: "octocat", Name: "hello"}

	entries, err := svc.ListContents(context.Background(), repo, "")
	require.NoError(t, err)
	assert.Equal(t, []model.FileEntry{
		{Name: "cmd", Path: "cmd", Type: model.FileTypeDir},
		{Name: "go.mod", Path: "go.mod", Type: model.FileTypeFile, Size: 120},
	}, entries)

	_, err = svc.ListContents(context.Background(), repo, "go.mod")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.ListContents(context.Background(), repo, "../secrets")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func fullDetailMocks(t *testing.T) []githubMock.MockBackendOption {
	return []githubMock.MockBackendOption{
		githubMock.WithRequestMatchHandler(getReadme, respond(t, testReadme("Hello **world**"))),
		githubMock.WithRequestMatchHandler(getCommits, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "20", r.URL.Query().Get("per_page"))
			_, _ = w.Write(githubMock.MustMarshal([]*github.RepositoryCommit{
				{SHA: github.String("abc123"), Commit: &github.Commit{Message: github.String("initial commit"), Author: &github.CommitAuthor{Name: github.String("Mona")}}},
			}))
		})),
		githubMock.WithRequestMatchHandler(getIssues, respond(t, []*github.Issue{{Number: github.Int(7), Title: github.String("crash")}})),
		githubMock.WithRequestMatchHandler(getPulls, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			assert.Equal(t, "open", r.URL.Query().Get("state"))
			_, _ = w.Write(githubMock.MustMarshal([]*github.PullRequest{{Number: github.Int(8), Title: github.String("fix crash")}}))
		})),
		githubMock.WithRequestMatchHandler(getReleases, respond(t, []*github.RepositoryRelease{{TagName: github.String("v1.0.0")}})),
		githubMock.WithRequestMatchHandler(getContributors, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "10", r.URL.Query().Get("per_page"))
			_, _ = w.Write(githubMock.MustMarshal([]*github.Contributor{{Login: github.String("mona"), Contributions: github.Int(42)}}))
		})),
		githubMock.WithRequestMatchHandler(getRootContents, respond(t, []*github.RepositoryContent{
			{Name: github.String("README.md"), Path: github.String("README.md"), Type: github.String("file")},
		})),
		githubMock.WithRequestMatchHandler(getRepo, respond(t, github.Repository{
			Name:     github.String("hello"),
			Owner:    &github.User{Login: github.String("octocat")},
			HasPages: github.Bool(true),
			Topics:   []string{"demo"},
		})),
	}
}

func TestFetchRepositoryDetail(t *testing.T) {
	svc := newTestService(nil, fullDetailMocks(t)...)

	state := store.New()
	repo := model.Repository{Owner: "octocat", Name: "hello", FullName: "octocat/hello"}
	svc.FetchRepositoryDetail(context.Background(), repo, state.BeginSelection(repo))

	detail := state.Detail()
	assert.Contains(t, detail.Readme, "<strong>world</strong>")
	require.Len(t, detail.Commits, 1)
	assert.Equal(t, "Mona", detail.Commits[0].Author)
	assert.Len(t, detail.Issues, 1)
	assert.Len(t, detail.PullRequests, 1)
	assert.Len(t, detail.Releases, 1)
	assert.Equal(t, 42, detail.Contributors[0].Contributions)
	assert.Len(t, detail.FileTree, 1)
	require.NotNil(t, detail.Metadata)
	assert.Equal(t, []string{"demo"}, detail.Metadata.Topics)
	assert.Equal(t, "https://octocat.github.io/hello/", detail.LivePreviewURL)
}

func TestFetchRepositoryDetailPartialFailures(t *testing.T) {
	tests := []struct {
		name           string
		readmeHandler  http.HandlerFunc
		expectedReadme string
	}{
		{name: "missing readme", readmeHandler: respondError(http.StatusNotFound), expectedReadme: model.ReadmeUnavailable},
		{name: "undecodable readme", readmeHandler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(githubMock.MustMarshal(github.RepositoryContent{
				Encoding: github.String("base64"),
				Content:  github.String("%%% not base64 %%%"),
			}))
		}, expectedReadme: model.ReadmeFetchError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := config.GetDefault()
			conf.Tasks.MaxParallelTasksAllowed = 2

			svc := newTestService(conf,
				githubMock.WithRequestMatchHandler(getReadme, tt.readmeHandler),
				githubMock.WithRequestMatchHandler(getCommits, respondError(http.StatusInternalServerError)),
				githubMock.WithRequestMatchHandler(getIssues, respond(t, []*github.Issue{{Number: github.Int(7)}})),
				githubMock.WithRequestMatchHandler(getPulls, respondError(http.StatusForbidden)),
				githubMock.WithRequestMatchHandler(getReleases, respond(t, []*github.RepositoryRelease{{TagName: github.String("v2")}})),
				githubMock.WithRequestMatchHandler(getContributors, respondError(http.StatusInternalServerError)),
				githubMock.WithRequestMatchHandler(getRootContents, respondError(http.StatusNotFound)),
				githubMock.WithRequestMatchHandler(getRepo, respondError(http.StatusInternalServerError)),
			)

			state := store.New()
			repo := model.Repository{Owner: "octocat", Name: "hello"}
			svc.FetchRepositoryDetail(context.Background(), repo, state.BeginSelection(repo))

			detail := state.Detail()
			assert.Equal(t, tt.expectedReadme, detail.Readme)
			assert.Empty(t, detail.Commits)
			assert.Empty(t, detail.PullRequests)
			assert.Empty(t, detail.Contributors)
			assert.Empty(t, detail.FileTree)
			assert.Nil(t, detail.Metadata)
			assert.Empty(t, detail.LivePreviewURL)

			// successful aspects are not blocked by the failed ones
			assert.Len(t, detail.Issues, 1)
			assert.Len(t, detail.Releases, 1)
		})
	}
}

// TestHandleRequestErrors check the mapping of go-github errors to error codes
func TestHandleRequestErrors(t *testing.T) {
	svc := newTestService(nil)

	request, err := http.NewRequest(http.MethodGet, "https://api.github.com/user", nil)
	require.NoError(t, err)

	rateLimitErr := &github.RateLimitError{
		Response: &http.Response{StatusCode: http.StatusForbidden, Request: request},
		Message:  "API rate limit exceeded",
	}
	assert.ErrorIs(t, svc.HandleRequestErrors(rateLimitErr), model.ErrRateLimitReached)

	// the local limiter is drained: the next call is refused without calling Github
	_, err = svc.FetchAuthenticatedUser(context.Background())
	assert.ErrorIs(t, err, model.ErrRateLimitReached)

	notFound := &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}
	assert.ErrorIs(t, newTestService(nil).HandleRequestErrors(notFound), model.ErrNotFound)

	var responseErr *github.ErrorResponse
	assert.ErrorAs(t, newTestService(nil).HandleRequestErrors(notFound), &responseErr)
}

func TestNewRateLimiter(t *testing.T) {
	mockedHTTPClient := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(getRateLimit, respond(t, map[string]interface{}{
			"resources": map[string]interface{}{
				"core": map[string]interface{}{"limit": 60, "remaining": 2, "reset": time.Now().Add(time.Hour).Unix()},
			},
		})),
	)

	limiter := NewRateLimiter(context.Background(), github.NewClient(mockedHTTPClient))
	assert.Equal(t, 60, limiter.Burst())
	assert.True(t, limiter.AllowN(time.Now(), 2))
	assert.False(t, limiter.Allow())

	// without rate limit information the default hourly limit is used
	limiter = NewRateLimiter(context.Background(), github.NewClient(githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(getRateLimit, respondError(http.StatusInternalServerError)),
	)))
	assert.Equal(t, defaultHourlyRateLimit, limiter.Burst())
}
