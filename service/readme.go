package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

const defaultBranch = "master"

var (
	markdownImageRegexp = regexp.MustCompile(`!\[([^\]]*)\]\((?:<([^>]+)>|([^)\s]+))((?:\s+(?:"[^"]*"|'[^']*'))?)\)`)
	htmlImageRegexp     = regexp.MustCompile(`<img\b[^>]*?\ssrc=["']([^"']+)["']`)

	readmePolicy = newReadmePolicy()
)

func newReadmePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("align").OnElements("p", "div", "img", "h1", "h2", "h3")
	policy.AllowAttrs("width", "height").OnElements("img")

	return policy
}

// ReadmeBaseURL is the URL relative README paths are resolved against
func ReadmeBaseURL(owner, repo, branch string) string {
	if branch == "" {
		branch = defaultBranch
	}

	return fmt.Sprintf("https://github.com/%s/%s/blob/%s", owner, repo, branch)
}

// RewriteRelativePaths make relative image paths of a README absolute
// markdown images and <img> tags are rewritten, absolute URLs are left untouched
func RewriteRelativePaths(markdown, baseURL string) string {
	rewritten := markdownImageRegexp.ReplaceAllStringFunc(markdown, func(match string) string {
		groups := markdownImageRegexp.FindStringSubmatch(match)
		alt, bracketed, path, title := groups[1], groups[2], groups[3], groups[4]

		// <destination> may hold spaces, the brackets are kept around the rewritten url
		if bracketed != "" {
			if isAbsolute(bracketed) {
				return match
			}

			return fmt.Sprintf("![%s](<%s>%s)", alt, rawURL(baseURL, bracketed), title)
		}

		if isAbsolute(path) {
			return match
		}

		return fmt.Sprintf("![%s](%s%s)", alt, rawURL(baseURL, path), title)
	})

	var builder strings.Builder
	last := 0

	for _, loc := range htmlImageRegexp.FindAllStringSubmatchIndex(rewritten, -1) {
		pathStart, pathEnd := loc[2], loc[3]
		path := rewritten[pathStart:pathEnd]

		if isAbsolute(path) {
			continue
		}

		builder.WriteString(rewritten[last:pathStart])
		builder.WriteString(rawURL(baseURL, path))
		last = pathEnd
	}

	builder.WriteString(rewritten[last:])
	return builder.String()
}

// RenderMarkdown convert the README to sanitized HTML
// raw HTML is kept, single line breaks are kept and bare URLs become links
func RenderMarkdown(markdown string) string {
	extensions := blackfriday.CommonExtensions | blackfriday.HardLineBreak | blackfriday.Autolink
	unsafe := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(extensions))

	return string(readmePolicy.SanitizeBytes(unsafe))
}

func rawURL(baseURL, path string) string {
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimLeft(path, "/")

	return baseURL + "/" + path + "?raw=true"
}

// isAbsolute is true for anything that must not be prefixed: URLs with a scheme
// (http, https, data, mailto...), protocol relative URLs and anchors
func isAbsolute(path string) bool {
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "#") {
		return true
	}

	parsed, err := url.Parse(path)
	if err != nil {
		return true
	}

	return parsed.Scheme != ""
}
