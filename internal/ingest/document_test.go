package ingest

import (
	"strings"
	"testing"
)

func TestExtractFrontmatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantMeta    map[string]string
		wantContent string
	}{
		{
			name:        "no frontmatter",
			content:     "# Heading\n\nBody text.",
			wantMeta:    map[string]string{},
			wantContent: "# Heading\n\nBody text.",
		},
		{
			name:        "simple frontmatter",
			content:     "---\ntitle: Physical AI Basics\nsidebar_position: 2\n---\nBody text.",
			wantMeta:    map[string]string{"title": "Physical AI Basics", "sidebar_position": "2"},
			wantContent: "Body text.",
		},
		{
			name:        "quoted values",
			content:     "---\ntitle: \"Chapter One\"\n---\nBody.",
			wantMeta:    map[string]string{"title": "Chapter One"},
			wantContent: "Body.",
		},
		{
			name:        "delimiter mid-document is not frontmatter",
			content:     "Intro paragraph.\n---\ntitle: Nope\n---\n",
			wantMeta:    map[string]string{},
			wantContent: "Intro paragraph.\n---\ntitle: Nope\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, rest := extractFrontmatter(tt.content)
			if len(meta) != len(tt.wantMeta) {
				t.Errorf("extractFrontmatter() meta = %v, want %v", meta, tt.wantMeta)
			}
			for k, v := range tt.wantMeta {
				if meta[k] != v {
					t.Errorf("meta[%q] = %q, want %q", k, meta[k], v)
				}
			}
			if rest != tt.wantContent {
				t.Errorf("extractFrontmatter() content = %q, want %q", rest, tt.wantContent)
			}
		})
	}
}

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "import statements removed",
			content: "import Tabs from '@theme/Tabs';\n\nReal prose here.",
			want:    "Real prose here.",
		},
		{
			name:    "code fences replaced",
			content: "Before.\n\n```python\nprint('hi')\n```\n\nAfter.",
			want:    "Before.\n\n[code block]\n\nAfter.",
		},
		{
			name:    "jsx tags removed",
			content: "<Tabs>\nSome text.\n</Tabs>",
			want:    "Some text.",
		},
		{
			name:    "html comments removed",
			content: "Visible.\n<!-- hidden\nnote -->\nStill visible.",
			want:    "Visible.\n\nStill visible.",
		},
		{
			name:    "blank runs collapsed",
			content: "One.\n\n\n\n\nTwo.",
			want:    "One.\n\nTwo.",
		},
		{
			name:    "lowercase html tags kept",
			content: "Use the <em>joint</em> frame.",
			want:    "Use the <em>joint</em> frame.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanContent(tt.content); got != tt.want {
				t.Errorf("cleanContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseChapterInfo(t *testing.T) {
	tests := []struct {
		name        string
		relPath     string
		wantChapter string
		wantPart    string
	}{
		{
			name:        "chapter inside part directory",
			relPath:     "part-i-foundations/ch01-intro-to-physical-ai.md",
			wantChapter: "Chapter 01: Intro To Physical Ai",
			wantPart:    "Part I: Foundations",
		},
		{
			name:        "chapter with two digit number",
			relPath:     "part-iv-advanced-topics/ch12-vla-systems.mdx",
			wantChapter: "Chapter 12: Vla Systems",
			wantPart:    "Part IV: Advanced Topics",
		},
		{
			name:        "glossary",
			relPath:     "glossary.md",
			wantChapter: "Glossary",
			wantPart:    "",
		},
		{
			name:        "unrecognized file",
			relPath:     "notes.md",
			wantChapter: "",
			wantPart:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapter, part := parseChapterInfo(tt.relPath)
			if chapter != tt.wantChapter {
				t.Errorf("parseChapterInfo() chapter = %q, want %q", chapter, tt.wantChapter)
			}
			if part != tt.wantPart {
				t.Errorf("parseChapterInfo() part = %q, want %q", part, tt.wantPart)
			}
		})
	}
}

func TestBuildSourceURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		relPath string
		want    string
	}{
		{
			name:    "markdown extension dropped",
			baseURL: "https://textbook.example.com",
			relPath: "part-i-foundations/ch01-intro.md",
			want:    "https://textbook.example.com/docs/part-i-foundations/ch01-intro",
		},
		{
			name:    "mdx extension dropped",
			baseURL: "https://textbook.example.com/",
			relPath: "glossary.mdx",
			want:    "https://textbook.example.com/docs/glossary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildSourceURL(tt.baseURL, tt.relPath); got != tt.want {
				t.Errorf("buildSourceURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocID(t *testing.T) {
	id := docID("part-i-foundations/ch01-intro.md")

	if len(id) != 12 {
		t.Errorf("docID() length = %d, want 12", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("docID() contains non-hex character %q", c)
		}
	}

	if docID("part-i-foundations/ch01-intro.md") != id {
		t.Error("docID() is not deterministic")
	}
	if docID("part-i-foundations/ch02-other.md") == id {
		t.Error("docID() collides for different paths")
	}
}
