package document

import (
	"fmt"
	"strings"
)

// =============================================================================
// Document Weaving
// =============================================================================

// Assets are the optional payloads woven into an uploaded HTML shell.
// Empty fields are skipped.
type Assets struct {
	// Favicon is the icon URL or data URI, inserted as a <link> right after
	// the opening <head> tag.
	Favicon string

	// CSS is embedded as a <style> block right before </head>.
	CSS string

	// JS is embedded as a <script> block right before </body>.
	JS string
}

// Empty reports whether there is nothing to weave.
func (a Assets) Empty() bool {
	return a.Favicon == "" && a.CSS == "" && a.JS == ""
}

// Weave composes the final published document from the HTML shell and the
// optional assets. Each supplied asset requires its marker to be present:
//
//   - Favicon: opening <head> tag
//   - CSS: closing </head> tag
//   - JS: closing </body> tag
//
// A supplied asset whose marker is missing fails with a WeaveError wrapping
// ErrMalformedDocument; nothing is silently skipped. Markers are matched
// case-insensitively and the opening <head> tag may carry attributes.
func Weave(html string, assets Assets) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", ErrEmptyDocument
	}

	doc := html

	if assets.Favicon != "" {
		insertAt, ok := afterHeadOpen(doc)
		if !ok {
			return "", NewWeaveError("favicon", "<head>")
		}
		link := fmt.Sprintf("\n<link rel=\"icon\" href=%q>", assets.Favicon)
		doc = doc[:insertAt] + link + doc[insertAt:]
	}

	if assets.CSS != "" {
		insertAt, ok := beforeMarker(doc, "</head>")
		if !ok {
			return "", NewWeaveError("css", "</head>")
		}
		style := fmt.Sprintf("<style>\n%s\n</style>\n", assets.CSS)
		doc = doc[:insertAt] + style + doc[insertAt:]
	}

	if assets.JS != "" {
		insertAt, ok := beforeMarker(doc, "</body>")
		if !ok {
			return "", NewWeaveError("js", "</body>")
		}
		script := fmt.Sprintf("<script>\n%s\n</script>\n", assets.JS)
		doc = doc[:insertAt] + script + doc[insertAt:]
	}

	return doc, nil
}

// afterHeadOpen finds the index just past the opening <head> tag, which may
// carry attributes ("<head lang=...>").
func afterHeadOpen(doc string) (int, bool) {
	lower := strings.ToLower(doc)
	start := strings.Index(lower, "<head")
	if start == -1 {
		return 0, false
	}
	// The next character must close or continue the tag, so "<header>" does
	// not match.
	rest := lower[start+len("<head"):]
	if rest == "" || (rest[0] != '>' && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n') {
		return 0, false
	}
	end := strings.IndexByte(rest, '>')
	if end == -1 {
		return 0, false
	}
	return start + len("<head") + end + 1, true
}

// beforeMarker finds the index of the first occurrence of marker,
// case-insensitively.
func beforeMarker(doc, marker string) (int, bool) {
	idx := strings.Index(strings.ToLower(doc), marker)
	if idx == -1 {
		return 0, false
	}
	return idx, true
}
