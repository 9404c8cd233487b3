// Package exploit classifies content-script injection match patterns by
// whether an arbitrary, unauthenticated web attacker controls at least one
// page the script is injected into. That reachability is the precondition
// for any data-flow finding to matter in the real world; the verdict is
// advisory metadata combined with flow results, never part of the graph.
package exploit

import "strings"

// AllURLs is the universal match-pattern token.
const AllURLs = "<all_urls>"

// Extensions the browser renders as a document of the intended type when
// opened from disk. A file:// pattern scoped to one of these still executes
// the content script on attacker-delivered files.
var textLikeExts = []string{".pdf", ".md", ".markdown", ".mdown", ".mkd", ".txt", ".rst"}

// IsEverywherePattern reports whether an injection match pattern effectively
// grants a web attacker a page the content script runs on.
//
// The universal token always qualifies. For web schemes (*, http, https) a
// wildcard host qualifies regardless of path, since the attacker fully
// controls scheme-appropriate origins and can place content at any path,
// including suffixes like *.pdf* or subpaths like /owa/*. For the file
// scheme a wildcard host qualifies only when the path is a bare wildcard or
// a wildcard stem ending in a text-like extension with a trailing wildcard:
// the victim must be induced to open a delivered file, and the browser only
// renders it as a document for those extensions (a .text file displays as
// inert source). A fixed host never qualifies.
func IsEverywherePattern(pattern string) bool {
	if pattern == AllURLs {
		return true
	}
	scheme, host, path, ok := splitMatchPattern(pattern)
	if !ok {
		return false
	}
	switch scheme {
	case "*", "http", "https":
		return host == "*"
	case "file":
		// file URLs carry no authority; an empty host reads as wildcard.
		if host != "*" && host != "" {
			return false
		}
		return fileWildcardPath(path)
	}
	return false
}

// AnyEverywhere reports whether at least one of the patterns is classified
// as attacker-reachable.
func AnyEverywhere(patterns []string) bool {
	for _, p := range patterns {
		if IsEverywherePattern(p) {
			return true
		}
	}
	return false
}

// splitMatchPattern decomposes scheme://host/path per match-pattern syntax.
func splitMatchPattern(p string) (scheme, host, path string, ok bool) {
	i := strings.Index(p, "://")
	if i < 0 {
		return "", "", "", false
	}
	scheme = p[:i]
	rest := p[i+3:]
	j := strings.IndexByte(rest, '/')
	if j < 0 {
		return scheme, rest, "", true
	}
	return scheme, rest[:j], rest[j:], true
}

// fileWildcardPath decides exploitability of a file-scheme path component.
func fileWildcardPath(path string) bool {
	p := strings.ToLower(path)
	if strings.Trim(p, "/*") == "" && strings.Contains(p, "*") {
		return true
	}
	if !strings.HasSuffix(p, "*") {
		return false
	}
	stem := strings.TrimRight(p, "*")
	for _, ext := range textLikeExts {
		if strings.HasSuffix(stem, ext) && strings.Contains(strings.TrimSuffix(stem, ext), "*") {
			return true
		}
	}
	return false
}
