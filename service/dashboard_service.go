package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/FlorianRuen/repo-dashboard/config"
	"github.com/FlorianRuen/repo-dashboard/model"
	"github.com/FlorianRuen/repo-dashboard/store"
	"github.com/FlorianRuen/repo-dashboard/tokenstore"
	log "github.com/sirupsen/logrus"
)

// DashboardService drive the dashboard state: session, repositories list and selected repository
type DashboardService interface {
	Store() *store.Store

	Login(ctx context.Context, token string, remember bool) (string, error)
	RestoreSession(ctx context.Context) error
	Logout() error
	SetUsername(username string) error

	RefreshRepositories(ctx context.Context) error
	SelectRepository(ctx context.Context, owner, name string) (model.RepositoryDetail, error)
	OpenDirectory(ctx context.Context, owner, name, path string) ([]model.FileEntry, error)
}

type dashboardService struct {
	config           config.Config
	state            *store.Store
	tokens           tokenstore.TokenStore
	newGithubService GithubServiceFactory

	mu     sync.RWMutex
	github GithubService
}

// NewDashboardService create the service, tokens can be nil to disable token persistence
func NewDashboardService(config config.Config, state *store.Store, tokens tokenstore.TokenStore, factory GithubServiceFactory) DashboardService {
	return &dashboardService{
		config:           config,
		state:            state,
		tokens:           tokens,
		newGithubService: factory,
	}
}

func (s *dashboardService) Store() *store.Store {
	return s.state
}

func (s *dashboardService) githubService() (GithubService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.github == nil {
		return nil, model.ErrUnauthorized
	}

	return s.github, nil
}

// Login check the token against Github and open the session of its owner
// the token is saved only when remember is set, a previously saved token is removed otherwise
func (s *dashboardService) Login(ctx context.Context, token string, remember bool) (string, error) {
	token = strings.TrimSpace(token)

	username, err := s.login(ctx, token, remember)
	if err != nil {
		return "", err
	}

	if s.tokens != nil {
		if remember {
			err = s.tokens.Save(token)
		} else {
			err = s.tokens.Clear()
		}

		if err != nil {
			log.WithError(err).Warning("unable to update the saved token")
		}
	}

	return username, nil
}

func (s *dashboardService) login(ctx context.Context, token string, remember bool) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: token is required", model.ErrInvalidInput)
	}

	gh, err := s.newGithubService(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrFetch, err)
	}

	username, err := gh.FetchAuthenticatedUser(ctx)
	if err != nil {
		log.WithError(err).Warning("invalid token or request failed")

		s.mu.Lock()
		s.github = nil
		s.mu.Unlock()

		s.state.ClearSession()
		return "", err
	}

	s.mu.Lock()
	s.github = gh
	s.mu.Unlock()

	s.state.SetSession(token, username, remember)
	log.WithField("username", username).Info("user authenticated")

	return username, nil
}

// RestoreSession log in with the configured token, or with the saved one
// the saved token is left untouched by a failed restore
func (s *dashboardService) RestoreSession(ctx context.Context) error {
	if token := s.config.Github.Token; token != "" {
		log.Debug("restore session with the configured token")

		_, err := s.login(ctx, token, false)
		return err
	}

	if s.tokens == nil {
		return model.ErrUnauthorized
	}

	token, err := s.tokens.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	if token == "" {
		return model.ErrUnauthorized
	}

	log.Debug("restore session with the saved token")

	_, err = s.login(ctx, token, true)
	return err
}

func (s *dashboardService) Logout() error {
	s.mu.Lock()
	s.github = nil
	s.mu.Unlock()

	s.state.ClearSession()

	if s.tokens != nil {
		if err := s.tokens.Clear(); err != nil {
			return fmt.Errorf("%w: %w", model.ErrStorage, err)
		}
	}

	log.Info("user logged out")
	return nil
}

func (s *dashboardService) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	}

	s.state.SetUsername(username)
	return nil
}

// RefreshRepositories replace the repositories list
// the private endpoint is used when the target user is the authenticated one
// on failure the previous list is kept
func (s *dashboardService) RefreshRepositories(ctx context.Context) error {
	gh, err := s.githubService()
	if err != nil {
		return err
	}

	session := s.state.Session()
	if session.Username == "" {
		return fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	}

	s.state.SetLoading(true)
	defer s.state.SetLoading(false)

	var repos []model.Repository
	if strings.EqualFold(session.Username, session.AuthenticatedUsername) {
		repos, err = gh.ListOwnRepositories(ctx)
	} else {
		repos, err = gh.ListUserRepositories(ctx, session.Username)
	}

	if err != nil {
		log.WithError(err).WithField("username", session.Username).Error("failed to fetch repositories")
		return err
	}

	log.WithFields(log.Fields{
		"username":     session.Username,
		"repositories": len(repos),
	}).Info("repositories list refreshed")

	s.state.SetRepositories(repos)
	return nil
}

// SelectRepository reset the detail bundle then fetch all of its aspects
// the repository is looked up in the current list first, then on Github
// the fetch outlives a cancelled ctx, the store drops its late writes once another repository is selected
func (s *dashboardService) SelectRepository(ctx context.Context, owner, name string) (model.RepositoryDetail, error) {
	gh, err := s.githubService()
	if err != nil {
		return model.RepositoryDetail{}, err
	}

	repo, found := s.state.FindRepository(owner, name)
	if !found {
		metadata, err := gh.GetRepository(ctx, owner, name)
		if err != nil {
			return model.RepositoryDetail{}, err
		}

		repo = metadata.Repository
	}

	writer := s.state.BeginSelection(repo)

	timeout := s.config.Github.RequestTimeout
	if timeout <= 0 {
		timeout = config.GetDefault().Github.RequestTimeout
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	gh.FetchRepositoryDetail(fetchCtx, repo, writer)

	detail, current := s.state.DetailOf(writer)
	if !current {
		log.WithField("repository", repo.FullName).Debug("another repository was selected during the fetch")
		return model.RepositoryDetail{}, fmt.Errorf("%w: %s is no longer selected", model.ErrSelectionChanged, repo.FullName)
	}

	log.WithFields(log.Fields{
		"repository": repo.FullName,
		"generation": writer.Generation(),
	}).Debug("repository detail loaded")

	return detail, nil
}

// OpenDirectory list a directory of the file tree
// when the repository is the selected one, the entries are attached to the tree of the detail bundle
func (s *dashboardService) OpenDirectory(ctx context.Context, owner, name, path string) ([]model.FileEntry, error) {
	gh, err := s.githubService()
	if err != nil {
		return nil, err
	}

	entries, err := gh.ListContents(ctx, model.Repository{Owner: owner, Name: name}, path)
	if err != nil {
		return nil, err
	}

	if writer, selected := s.state.SelectionWriter(owner, name); selected {
		writer.OpenDirectory(path, entries)
	}

	return entries, nil
}
