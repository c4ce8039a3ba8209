package store

import (
	"slices"
	"sync"

	"github.com/FlorianRuen/repo-dashboard/model"
)

type EventType string

const (
	EventSession      EventType = "session"
	EventRepositories EventType = "repositories"
	EventCriteria     EventType = "criteria"
	EventLoading      EventType = "loading"
	EventDetail       EventType = "detail"
)

// Event notify subscribers that a part of the state changed
// subscribers read the new state from the store themselves
type Event struct {
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation,omitempty"` // selection generation, detail events only
}

const subscriberBufferSize = 32

// Session is the authentication part of the state
type Session struct {
	AuthenticatedUsername string `json:"authenticatedUsername"`
	Username              string `json:"username"`
	RememberToken         bool   `json:"rememberToken"`
	Authenticated         bool   `json:"authenticated"`
}

// Store hold the whole dashboard state
// visible repositories are recomputed each time repositories or criteria change
type Store struct {
	mu sync.RWMutex

	token                 string
	rememberToken         bool
	authenticatedUsername string
	username              string

	repos    []model.Repository
	criteria model.FilterCriteria
	visible  []model.Repository
	loading  bool

	generation uint64
	detail     model.RepositoryDetail

	subscribers    map[int]chan Event
	nextSubscriber int
}

func New() *Store {
	s := &Store{
		criteria:    model.DefaultFilterCriteria(),
		repos:       []model.Repository{},
		visible:     []model.Repository{},
		detail:      model.NewRepositoryDetail(nil),
		subscribers: make(map[int]chan Event),
	}

	return s
}

// Subscribe return a channel receiving every change event and a function to stop receiving them
// events are dropped for a subscriber whose buffer is full
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubscriber
	s.nextSubscriber++

	ch := make(chan Event, subscriberBufferSize)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}

// publish must be called with the lock held
func (s *Store) publish(event Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SetSession store the token and the user it belongs to
// the target username is reset to the authenticated one, like after a fresh login
func (s *Store) SetSession(token, authenticatedUsername string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.authenticatedUsername = authenticatedUsername
	s.username = authenticatedUsername
	s.rememberToken = remember
	s.publish(Event{Type: EventSession})
}

// ClearSession forget the token and everything loaded with it
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.authenticatedUsername = ""
	s.username = ""
	s.rememberToken = false
	s.repos = []model.Repository{}
	s.visible = []model.Repository{}
	s.generation++
	s.detail = model.NewRepositoryDetail(nil)

	s.publish(Event{Type: EventSession})
	s.publish(Event{Type: EventRepositories})
	s.publish(Event{Type: EventDetail, Generation: s.generation})
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Session{
		AuthenticatedUsername: s.authenticatedUsername,
		Username:              s.username,
		RememberToken:         s.rememberToken,
		Authenticated:         s.token != "" && s.authenticatedUsername != "",
	}
}

// SetUsername change the user whose repositories are listed
func (s *Store) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.publish(Event{Type: EventSession})
}

// SetRepositories replace the whole list
func (s *Store) SetRepositories(repos []model.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repos = slices.Clone(repos)
	if s.repos == nil {
		s.repos = []model.Repository{}
	}

	s.recompute()
	s.publish(Event{Type: EventRepositories})
}

func (s *Store) Repositories() []model.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.repos)
}

// FindRepository look for a repository of the current list by owner and name
func (s *Store) FindRepository(owner, name string) (model.Repository, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.repos {
		if r.Owner == owner && r.Name == name {
			return r, true
		}
	}

	return model.Repository{}, false
}

// SetCriteria replace all criteria at once
func (s *Store) SetCriteria(criteria model.FilterCriteria) {
	s.UpdateCriteria(func(c *model.FilterCriteria) {
		*c = criteria
	})
}

// UpdateCriteria change some criteria, the other ones are kept
func (s *Store) UpdateCriteria(update func(c *model.FilterCriteria)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(&s.criteria)
	s.criteria = s.criteria.Normalize()

	s.recompute()
	s.publish(Event{Type: EventCriteria})
}

func (s *Store) Criteria() model.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.criteria
}

// recompute must be called with the lock held
func (s *Store) recompute() {
	s.visible = Apply(s.repos, s.criteria)
}

// Visible return the filtered and sorted repositories
func (s *Store) Visible() []model.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.visible)
}

func (s *Store) MaxStars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return MaxStars(s.repos)
}

func (s *Store) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Languages(s.repos)
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = loading
	s.publish(Event{Type: EventLoading})
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// BeginSelection select a repository and reset every detail slot to its placeholder
// the returned writer is the only way to fill the slots of this selection
func (s *Store) BeginSelection(repo model.Repository) *DetailWriter {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.detail = model.NewRepositoryDetail(&repo)
	s.publish(Event{Type: EventDetail, Generation: s.generation})

	return &DetailWriter{store: s, generation: s.generation}
}

// SelectionWriter return a writer for the current selection when it is the given repository
func (s *Store) SelectionWriter(owner, name string) (*DetailWriter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := s.detail.Repository
	if selected == nil || selected.Owner != owner || selected.Name != name {
		return nil, false
	}

	return &DetailWriter{store: s, generation: s.generation}, true
}

// Detail return a copy of the detail bundle of the selected repository
func (s *Store) Detail() model.RepositoryDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cloneDetail()
}

// DetailOf return the detail bundle filled by the writer
// false when another repository has been selected since the writer was created
func (s *Store) DetailOf(w *DetailWriter) (model.RepositoryDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w.store != s || w.generation != s.generation {
		return model.RepositoryDetail{}, false
	}

	return s.cloneDetail(), true
}

// cloneDetail must be called with the lock held
func (s *Store) cloneDetail() model.RepositoryDetail {
	detail := s.detail
	detail.Commits = slices.Clone(s.detail.Commits)
	detail.Issues = slices.Clone(s.detail.Issues)
	detail.PullRequests = slices.Clone(s.detail.PullRequests)
	detail.Releases = slices.Clone(s.detail.Releases)
	detail.Contributors = slices.Clone(s.detail.Contributors)
	detail.FileTree = slices.Clone(s.detail.FileTree)

	return detail
}

// DetailWriter fill the detail slots of one selection
// once another repository is selected, its writes are ignored
type DetailWriter struct {
	store      *Store
	generation uint64
}

func (w *DetailWriter) Generation() uint64 {
	return w.generation
}

// apply run the update when the selection is still current and report whether it did
func (w *DetailWriter) apply(update func(d *model.RepositoryDetail)) bool {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	if w.store.generation != w.generation {
		return false
	}

	update(&w.store.detail)
	w.store.publish(Event{Type: EventDetail, Generation: w.generation})

	return true
}

func (w *DetailWriter) SetReadme(html string) {
	w.apply(func(d *model.RepositoryDetail) { d.Readme = html })
}

func (w *DetailWriter) SetCommits(commits []model.Commit) {
	w.apply(func(d *model.RepositoryDetail) { d.Commits = nonNil(commits) })
}

func (w *DetailWriter) SetIssues(issues []model.Issue) {
	w.apply(func(d *model.RepositoryDetail) { d.Issues = nonNil(issues) })
}

func (w *DetailWriter) SetPullRequests(pulls []model.PullRequest) {
	w.apply(func(d *model.RepositoryDetail) { d.PullRequests = nonNil(pulls) })
}

func (w *DetailWriter) SetReleases(releases []model.Release) {
	w.apply(func(d *model.RepositoryDetail) { d.Releases = nonNil(releases) })
}

func (w *DetailWriter) SetContributors(contributors []model.Contributor) {
	w.apply(func(d *model.RepositoryDetail) { d.Contributors = nonNil(contributors) })
}

func (w *DetailWriter) SetFileTree(entries []model.FileEntry) {
	w.apply(func(d *model.RepositoryDetail) { d.FileTree = nonNil(entries) })
}

func (w *DetailWriter) SetMetadata(metadata *model.Metadata) {
	w.apply(func(d *model.RepositoryDetail) { d.Metadata = metadata })
}

func (w *DetailWriter) SetLivePreviewURL(url string) {
	w.apply(func(d *model.RepositoryDetail) { d.LivePreviewURL = url })
}

// OpenDirectory attach the children of a directory of the file tree
func (w *DetailWriter) OpenDirectory(path string, children []model.FileEntry) bool {
	return w.apply(func(d *model.RepositoryDetail) {
		d.FileTree = attachChildren(d.FileTree, path, nonNil(children))
	})
}

// attachChildren return a copy of the tree where the directory at path is open with the given children
func attachChildren(tree []model.FileEntry, path string, children []model.FileEntry) []model.FileEntry {
	updated := slices.Clone(tree)

	for i := range updated {
		switch {
		case updated[i].Path == path:
			updated[i].Children = children
			updated[i].IsOpen = true
			updated[i].Loading = false
		case updated[i].Type == model.FileTypeDir && len(updated[i].Children) > 0:
			updated[i].Children = attachChildren(updated[i].Children, path, children)
		}
	}

	return updated
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}

	return values
}
