package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBaseURL = "https://github.com/octocat/hello/blob/main"

func TestRewriteRelativePaths(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "relative markdown image",
			markdown: "![logo](docs/logo.png)",
			expected: "![logo](https://github.com/octocat/hello/blob/main/docs/logo.png?raw=true)",
		},
		{
			name:     "dot slash and leading slash are stripped",
			markdown: "![a](./a.png) ![b](/b.png)",
			expected: "![a](https://github.com/octocat/hello/blob/main/a.png?raw=true) ![b](https://github.com/octocat/hello/blob/main/b.png?raw=true)",
		},
		{
			name:     "markdown image title is kept",
			markdown: `![shot](img/shot.png "Screenshot")`,
			expected: `![shot](https://github.com/octocat/hello/blob/main/img/shot.png?raw=true "Screenshot")`,
		},
		{
			name:     "absolute markdown images are untouched",
			markdown: "![ci](https://img.shields.io/badge.svg) ![old](http://example.com/a.png) ![cdn](//cdn.example.com/a.png)",
			expected: "![ci](https://img.shields.io/badge.svg) ![old](http://example.com/a.png) ![cdn](//cdn.example.com/a.png)",
		},
		{
			name:     "data uri is untouched",
			markdown: "![dot](data:image/png;base64,iVBORw0KGgo=)",
			expected: "![dot](data:image/png;base64,iVBORw0KGgo=)",
		},
		{
			name:     "single quoted markdown image title is kept",
			markdown: "![b](c.png 'T')",
			expected: "![b](https://github.com/octocat/hello/blob/main/c.png?raw=true 'T')",
		},
		{
			name:     "angle bracket destination",
			markdown: `![a](<my image.png>) ![b](<docs/b.png> "B")`,
			expected: `![a](<https://github.com/octocat/hello/blob/main/my image.png?raw=true>) ![b](<https://github.com/octocat/hello/blob/main/docs/b.png?raw=true> "B")`,
		},
		{
			name:     "absolute angle bracket destination is untouched",
			markdown: "![ci](<https://img.shields.io/badge.svg>)",
			expected: "![ci](<https://img.shields.io/badge.svg>)",
		},
		{
			name:     "relative img tag",
			markdown: `<p align="center"><img width="120" src="assets/logo.svg" alt="logo"></p>`,
			expected: `<p align="center"><img width="120" src="https://github.com/octocat/hello/blob/main/assets/logo.svg?raw=true" alt="logo"></p>`,
		},
		{
			name:     "single quoted img tag",
			markdown: `<img src='logo.png'>`,
			expected: `<img src='https://github.com/octocat/hello/blob/main/logo.png?raw=true'>`,
		},
		{
			name:     "data-src attribute is not the image source",
			markdown: `<img data-src="lazy.png" src="real.png">`,
			expected: `<img data-src="lazy.png" src="https://github.com/octocat/hello/blob/main/real.png?raw=true">`,
		},
		{
			name:     "absolute img tag is untouched",
			markdown: `<img src="https://example.com/logo.png"> and <img src="local.png">`,
			expected: `<img src="https://example.com/logo.png"> and <img src="https://github.com/octocat/hello/blob/main/local.png?raw=true">`,
		},
		{
			name:     "regular links are untouched",
			markdown: "[docs](docs/README.md)",
			expected: "[docs](docs/README.md)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RewriteRelativePaths(tt.markdown, testBaseURL))
		})
	}
}

func TestReadmeBaseURL(t *testing.T) {
	assert.Equal(t, "https://github.com/octocat/hello/blob/main", ReadmeBaseURL("octocat", "hello", "main"))
	assert.Equal(t, "https://github.com/octocat/hello/blob/master", ReadmeBaseURL("octocat", "hello", ""))
}

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("# Title\nfirst line\nsecond line\n\nsee https://example.com\n\n<script>alert(1)</script>")

	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<br")
	assert.Contains(t, html, `href="https://example.com"`)
	assert.NotContains(t, html, "<script>")
}
