package render

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/debemdeboas/ghostwriter/internal/cache"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		renderer string
		markdown string
		contains []string
		excludes []string
	}{
		{
			name:     "mmark heading",
			renderer: RendererMmark,
			markdown: "# Launch notes\n\nShort and *sweet*.",
			contains: []string{"Launch notes", "<em>sweet</em>"},
		},
		{
			name:     "classic heading",
			renderer: RendererClassic,
			markdown: "# Launch notes\n\nShort and *sweet*.",
			contains: []string{"<h1", "Launch notes", "<em>sweet</em>"},
		},
		{
			name:     "code block is highlighted",
			renderer: RendererClassic,
			markdown: "```go\nfunc main() {}\n```",
			contains: []string{`<div class="highlight">`, "chroma"},
		},
		{
			name:     "raw HTML is dropped",
			renderer: RendererClassic,
			markdown: "Hello <script>alert(1)</script> world",
			excludes: []string{"<script>"},
		},
		{
			name:     "raw HTML is dropped with mmark",
			renderer: RendererMmark,
			markdown: "<iframe src=\"https://example.com\"></iframe>\n\ntext",
			excludes: []string{"<iframe"},
		},
		{
			name:     "code is escaped",
			renderer: RendererMmark,
			markdown: "```html\n<b>bold</b>\n```",
			excludes: []string{"<b>bold</b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := Markdown([]byte(tt.markdown), tt.renderer, "github")
			html := string(out)
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("Expected output to contain %q, got %s", want, html)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(html, unwanted) {
					t.Errorf("Expected output not to contain %q, got %s", unwanted, html)
				}
			}
		})
	}
}

func TestMmarkTitle(t *testing.T) {
	md := "%%%\ntitle = \"Quarterly update\"\n%%%\n\n# Body\n"
	_, title := Markdown([]byte(md), RendererMmark, "github")
	if title != "Quarterly update" {
		t.Errorf("Expected title from title block, got %q", title)
	}

	if _, title := Markdown([]byte("# Body"), RendererMmark, "github"); title != "" {
		t.Errorf("Expected no title without a title block, got %q", title)
	}
}

func TestHighlightCodeCallouts(t *testing.T) {
	out := HighlightCode("x := 1 // <<1>>", "go", "github")
	if !strings.Contains(out, `<span class="callout">1</span>`) {
		t.Errorf("Expected callout span, got %s", out)
	}
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	out := HighlightCode("<tag>", "not-a-language", "github")
	if strings.Contains(out, "<tag>") {
		t.Errorf("Expected fallback lexer output to be escaped, got %s", out)
	}
}

func TestMarkdownCached(t *testing.T) {
	cache.ClearRenderedMarkdownCache()
	md := []byte("# Cached\n\nbody")

	first := MarkdownCached(md, RendererClassic, "github")
	if first == nil || len(first.HTML) == 0 {
		t.Fatal("Expected rendered content")
	}

	second := MarkdownCached(md, RendererClassic, "github")
	if first != second {
		t.Error("Expected second call to return the cached entry")
	}

	otherTheme := MarkdownCached(md, RendererClassic, "monokai")
	if otherTheme == first {
		t.Error("Expected a separate cache entry per syntax theme")
	}

	otherRenderer := MarkdownCached(md, RendererMmark, "github")
	if otherRenderer == first {
		t.Error("Expected a separate cache entry per renderer")
	}
}

func TestMarkdownCachedConcurrent(t *testing.T) {
	cache.ClearRenderedMarkdownCache()
	md := []byte("```go\nfunc f() {}\n```")

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = MarkdownCached(md, RendererMmark, "github").HTML
		}()
	}
	wg.Wait()

	for i, r := range results {
		if !bytes.Equal(r, results[0]) {
			t.Errorf("Result %d differs from result 0", i)
		}
	}
}

func TestHighlightMarkdown(t *testing.T) {
	out, err := HighlightMarkdown("# Title\n\n*text*", "github")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `<div class="markdown-source">`) {
		t.Errorf("Expected source wrapper, got %s", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Error("Expected line breaks to be preserved")
	}
}
