package model

import "time"

// Repository is a snapshot of a repository as returned by the Github list endpoints
// the whole list is replaced on every refresh, a Repository is never updated in place
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"fullName"`
	Owner           string    `json:"owner"`
	Private         bool      `json:"private"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazersCount"`
	ForksCount      int       `json:"forksCount"`
	Language        string    `json:"language"`
	UpdatedAt       time.Time `json:"updatedAt"`
	HTMLURL         string    `json:"htmlUrl"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	IsTemplate      bool      `json:"isTemplate"`
	HasPages        bool      `json:"hasPages"`
	Homepage        string    `json:"homepage,omitempty"`
	CloneURL        string    `json:"cloneUrl,omitempty"`
	DefaultBranch   string    `json:"defaultBranch,omitempty"`
	OpenIssuesCount int       `json:"openIssuesCount"`
}

// Metadata is the full repository object fetched when a repository is selected
type Metadata struct {
	Repository
	Topics        []string  `json:"topics"`
	License       string    `json:"license,omitempty"`
	WatchersCount int       `json:"watchersCount"`
	Visibility    string    `json:"visibility"`
	CreatedAt     time.Time `json:"createdAt"`
	PushedAt      time.Time `json:"pushedAt"`
}

type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	HTMLURL string    `json:"htmlUrl"`
}

type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Comments  int       `json:"comments"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"createdAt"`
	HTMLURL   string    `json:"htmlUrl"`
}

type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Draft     bool      `json:"draft"`
	CreatedAt time.Time `json:"createdAt"`
	HTMLURL   string    `json:"htmlUrl"`
}

type Release struct {
	TagName     string    `json:"tagName"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"publishedAt"`
	HTMLURL     string    `json:"htmlUrl"`
}

type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatarUrl"`
	HTMLURL       string `json:"htmlUrl"`
}

type FileType string

const (
	FileTypeFile FileType = "file"
	FileTypeDir  FileType = "dir"
)

// FileEntry is a node of the file tree
// children are loaded lazily when a directory is opened
type FileEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Type     FileType    `json:"type"`
	Size     int         `json:"size"`
	HTMLURL  string      `json:"htmlUrl"`
	URL      string      `json:"url"` // Github API URL for this item
	Children []FileEntry `json:"children,omitempty"`
	IsOpen   bool        `json:"isOpen"`
	Loading  bool        `json:"loading"`
}
