package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n?`)
	importLineRe  = regexp.MustCompile(`(?m)^import\s+.*$`)
	jsxOpenRe     = regexp.MustCompile(`<[A-Z][^>]*>`)
	jsxCloseRe    = regexp.MustCompile(`</[A-Z][^>]*>`)
	codeFenceRe   = regexp.MustCompile("(?s)```.*?```")
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	blankRunsRe   = regexp.MustCompile(`\n{3,}`)

	partDirRe     = regexp.MustCompile(`^part-([ivx]+)-(.+)$`)
	chapterFileRe = regexp.MustCompile(`^ch(\d+)-(.+)$`)
)

// extractFrontmatter parses a leading YAML frontmatter block of simple
// key: value pairs and returns the metadata plus the remaining content.
// Nested YAML is not supported; the corpus only uses flat string fields.
func extractFrontmatter(content string) (map[string]string, string) {
	meta := make(map[string]string)

	match := frontmatterRe.FindStringSubmatch(content)
	if match == nil {
		return meta, content
	}

	for _, line := range strings.Split(match[1], "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			meta[key] = value
		}
	}

	return meta, content[len(match[0]):]
}

// cleanContent strips MDX artifacts that carry no prose: import statements,
// JSX component tags, HTML comments. Fenced code blocks are replaced with a
// placeholder so surrounding text stays chunkable without embedding code.
func cleanContent(content string) string {
	content = importLineRe.ReplaceAllString(content, "")
	content = codeFenceRe.ReplaceAllString(content, "[code block]")
	content = jsxCloseRe.ReplaceAllString(content, "")
	content = jsxOpenRe.ReplaceAllString(content, "")
	content = htmlCommentRe.ReplaceAllString(content, "")
	content = blankRunsRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// titleCaseSlug converts a hyphenated slug to a spaced title,
// e.g. "humanoid-robotics" becomes "Humanoid Robotics".
func titleCaseSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// parseChapterInfo derives chapter and part labels from a document's path
// relative to the docs root. Part directories look like "part-i-foundations",
// chapter files like "ch01-introduction.md". A file named "glossary" maps to
// the Glossary chapter.
func parseChapterInfo(relPath string) (chapter, part string) {
	relPath = filepath.ToSlash(relPath)
	segments := strings.Split(relPath, "/")

	for _, segment := range segments[:len(segments)-1] {
		if match := partDirRe.FindStringSubmatch(segment); match != nil {
			part = fmt.Sprintf("Part %s: %s", strings.ToUpper(match[1]), titleCaseSlug(match[2]))
		}
	}

	base := segments[len(segments)-1]
	base = strings.TrimSuffix(base, ".mdx")
	base = strings.TrimSuffix(base, ".md")

	if base == "glossary" {
		return "Glossary", part
	}

	if match := chapterFileRe.FindStringSubmatch(base); match != nil {
		num, err := strconv.Atoi(match[1])
		if err == nil {
			return fmt.Sprintf("Chapter %02d: %s", num, titleCaseSlug(match[2])), part
		}
	}

	return "", part
}

// buildSourceURL maps a document path to its published URL under the site's
// /docs/ route, dropping the markdown extension.
func buildSourceURL(baseURL, relPath string) string {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.TrimSuffix(relPath, ".mdx")
	relPath = strings.TrimSuffix(relPath, ".md")
	return strings.TrimSuffix(baseURL, "/") + "/docs/" + relPath
}

// docID derives a stable document identifier from its path. The first twelve
// hex characters of the MD5 digest keep IDs short while staying unique
// across a corpus of this size.
func docID(relPath string) string {
	sum := md5.Sum([]byte(filepath.ToSlash(relPath)))
	return hex.EncodeToString(sum[:])[:12]
}
