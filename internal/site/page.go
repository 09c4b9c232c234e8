package site

import (
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark/util"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<article>
%s</article>
</body>
</html>
`

// wrapPage embeds a rendered fragment in a minimal html page.
func wrapPage(title, body string) string {
	return fmt.Sprintf(pageTemplate, util.EscapeHTML([]byte(title)), body)
}

// relativeHref rewrites href, relative to the output root, so it can be
// used from a page stored at from.
func relativeHref(from, href string) string {
	if href == "" || strings.Contains(href, "://") || strings.HasPrefix(href, "/") {
		return href
	}
	fromDir := strings.Split(path.Dir(from), "/")
	if fromDir[0] == "." {
		fromDir = nil
	}
	target := strings.Split(path.Clean(href), "/")

	common := 0
	for common < len(fromDir) && common < len(target)-1 && fromDir[common] == target[common] {
		common++
	}
	parts := make([]string, 0, len(fromDir)-common+len(target)-common)
	for range fromDir[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)
	return strings.Join(parts, "/")
}
