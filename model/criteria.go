package model

import (
	"fmt"
	"strings"
)

const AllValues = "all"

type Visibility string

const (
	VisibilityAll     Visibility = AllValues
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type ArchivedState string

const (
	ArchivedAll    ArchivedState = AllValues
	ArchivedOnly   ArchivedState = "archived"
	ArchivedActive ArchivedState = "active"
)

type TemplateState string

const (
	TemplateAll  TemplateState = AllValues
	TemplateOnly TemplateState = "template"
	TemplateNone TemplateState = "non-template"
)

type SortKey string

const (
	SortNone     SortKey = ""
	SortName     SortKey = "name"
	SortStars    SortKey = "stars"
	SortForks    SortKey = "forks"
	SortUpdated  SortKey = "updated"
	SortLanguage SortKey = "language"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterCriteria drives the visible repositories list
// every field can be changed on its own, there is no invariant between them
type FilterCriteria struct {
	Query         string        `form:"q" json:"query"`
	Language      string        `form:"language" json:"language"`
	Visibility    Visibility    `form:"visibility" json:"visibility"`
	Archived      ArchivedState `form:"archived" json:"archived"`
	Template      TemplateState `form:"template" json:"template"`
	MinStars      int           `form:"minStars" json:"minStars"`
	MinForks      int           `form:"minForks" json:"minForks"`
	ShowForks     bool          `form:"showForks" json:"showForks"`
	SortKey       SortKey       `form:"sort" json:"sortKey"`
	SortDirection SortDirection `form:"direction" json:"sortDirection"`
}

// DefaultFilterCriteria shows everything, unsorted
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{
		Language:      AllValues,
		Visibility:    VisibilityAll,
		Archived:      ArchivedAll,
		Template:      TemplateAll,
		ShowForks:     true,
		SortKey:       SortNone,
		SortDirection: SortDesc,
	}
}

// Normalize replace empty enum values by their defaults, so partial inputs stay usable
func (c FilterCriteria) Normalize() FilterCriteria {
	if c.Language == "" {
		c.Language = AllValues
	}

	if c.Visibility == "" {
		c.Visibility = VisibilityAll
	}

	if c.Archived == "" {
		c.Archived = ArchivedAll
	}

	if c.Template == "" {
		c.Template = TemplateAll
	}

	if c.SortDirection == "" {
		c.SortDirection = SortDesc
	}

	c.SortDirection = SortDirection(strings.ToLower(string(c.SortDirection)))
	c.SortKey = SortKey(strings.ToLower(string(c.SortKey)))

	return c
}

// Validate check enum fields, it must be called on normalized criteria
func (c FilterCriteria) Validate() error {
	switch c.Visibility {
	case VisibilityAll, VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("invalid visibility %q", c.Visibility)
	}

	switch c.Archived {
	case ArchivedAll, ArchivedOnly, ArchivedActive:
	default:
		return fmt.Errorf("invalid archived state %q", c.Archived)
	}

	switch c.Template {
	case TemplateAll, TemplateOnly, TemplateNone:
	default:
		return fmt.Errorf("invalid template state %q", c.Template)
	}

	switch c.SortKey {
	case SortNone, SortName, SortStars, SortForks, SortUpdated, SortLanguage:
	default:
		return fmt.Errorf("invalid sort key %q", c.SortKey)
	}

	switch c.SortDirection {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("invalid sort direction %q", c.SortDirection)
	}

	if c.MinStars < 0 || c.MinForks < 0 {
		return fmt.Errorf("minimum stars and forks must be positive")
	}

	return nil
}
