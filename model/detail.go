package model

// placeholders used for the README slot of the detail bundle
const (
	ReadmeLoading     = "Loading README..."
	ReadmeUnavailable = "<p>No README available.</p>"
	ReadmeFetchError  = "<p>Error fetching README.</p>"
)

// RepositoryDetail is everything displayed for the selected repository
// every slot is reset when another repository is selected and filled independently
type RepositoryDetail struct {
	Repository     *Repository   `json:"repository"`
	Readme         string        `json:"readme"`
	Commits        []Commit      `json:"commits"`
	Issues         []Issue       `json:"issues"`
	PullRequests   []PullRequest `json:"pullRequests"`
	Releases       []Release     `json:"releases"`
	Contributors   []Contributor `json:"contributors"`
	FileTree       []FileEntry   `json:"fileTree"`
	Metadata       *Metadata     `json:"metadata"`
	LivePreviewURL string        `json:"livePreviewUrl"`
}

// NewRepositoryDetail returns the bundle in its placeholder state
func NewRepositoryDetail(repo *Repository) RepositoryDetail {
	return RepositoryDetail{
		Repository:   repo,
		Readme:       ReadmeLoading,
		Commits:      []Commit{},
		Issues:       []Issue{},
		PullRequests: []PullRequest{},
		Releases:     []Release{},
		Contributors: []Contributor{},
		FileTree:     []FileEntry{},
	}
}
