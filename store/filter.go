package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/FlorianRuen/repo-dashboard/model"
)

// Apply return the repositories matching the criteria, sorted when a sort key is set
// the input slice is never modified
func Apply(repos []model.Repository, criteria model.FilterCriteria) []model.Repository {
	criteria = criteria.Normalize()
	query := strings.ToLower(criteria.Query)

	visible := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if Matches(r, criteria, query) {
			visible = append(visible, r)
		}
	}

	if criteria.SortKey == model.SortNone {
		return visible
	}

	compare := comparator(criteria.SortKey)
	if criteria.SortDirection == model.SortAsc {
		slices.SortStableFunc(visible, compare)
	} else {
		slices.SortStableFunc(visible, func(a, b model.Repository) int {
			return compare(b, a)
		})
	}

	return visible
}

// Matches is the filter predicate, lowerQuery is the already lower cased free text query
func Matches(r model.Repository, criteria model.FilterCriteria, lowerQuery string) bool {
	if lowerQuery != "" &&
		!strings.Contains(strings.ToLower(r.Name), lowerQuery) &&
		!strings.Contains(strings.ToLower(r.Description), lowerQuery) {
		return false
	}

	if criteria.Language != model.AllValues && r.Language != criteria.Language {
		return false
	}

	switch criteria.Visibility {
	case model.VisibilityPublic:
		if r.Private {
			return false
		}
	case model.VisibilityPrivate:
		if !r.Private {
			return false
		}
	}

	switch criteria.Archived {
	case model.ArchivedOnly:
		if !r.Archived {
			return false
		}
	case model.ArchivedActive:
		if r.Archived {
			return false
		}
	}

	switch criteria.Template {
	case model.TemplateOnly:
		if !r.IsTemplate {
			return false
		}
	case model.TemplateNone:
		if r.IsTemplate {
			return false
		}
	}

	if r.StargazersCount < criteria.MinStars || r.ForksCount < criteria.MinForks {
		return false
	}

	return criteria.ShowForks || !r.Fork
}

// comparator return the ascending comparison for a sort key
func comparator(key model.SortKey) func(a, b model.Repository) int {
	switch key {
	case model.SortStars:
		return func(a, b model.Repository) int { return cmp.Compare(a.StargazersCount, b.StargazersCount) }
	case model.SortForks:
		return func(a, b model.Repository) int { return cmp.Compare(a.ForksCount, b.ForksCount) }
	case model.SortUpdated:
		return func(a, b model.Repository) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case model.SortLanguage:
		return func(a, b model.Repository) int { return compareText(a.Language, b.Language) }
	default:
		return func(a, b model.Repository) int { return compareText(a.Name, b.Name) }
	}
}

// compareText orders case insensitively, the raw value breaks ties
func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

// MaxStars is the highest star count of the list, 0 for an empty list
func MaxStars(repos []model.Repository) int {
	maxStars := 0
	for _, r := range repos {
		maxStars = max(maxStars, r.StargazersCount)
	}

	return maxStars
}

// Languages return the distinct languages of the list, sorted
func Languages(repos []model.Repository) []string {
	seen := make(map[string]struct{})
	languages := make([]string, 0)

	for _, r := range repos {
		if r.Language == "" {
			continue
		}

		if _, found := seen[r.Language]; !found {
			seen[r.Language] = struct{}{}
			languages = append(languages, r.Language)
		}
	}

	slices.SortFunc(languages, compareText)
	return languages
}
