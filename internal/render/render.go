// Package render turns draft markdown into HTML previews with chroma
// syntax highlighting.
package render

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/cache"
	"github.com/debemdeboas/ghostwriter/internal/theme"
	"github.com/debemdeboas/ghostwriter/internal/util"
)

const (
	RendererMmark   = "mmark"
	RendererClassic = "classic"
)

var renderLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// Callouts look like "// <<1>>" and are matched after chroma escaped them.
var regexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)

func HighlightCode(code, language, syntaxTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var buf strings.Builder
	if err := theme.Formatter().Format(&buf, styles.Get(syntaxTheme), iterator); err != nil {
		return html.EscapeString(code)
	}

	return regexCallout.ReplaceAllString(buf.String(), `<span class="callout">$1</span>`)
}

func codeBlockHook(syntaxTheme string) func(io.Writer, ast.Node, bool) (ast.WalkStatus, bool) {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		code, ok := node.(*ast.CodeBlock)
		if !ok || !entering {
			return ast.GoToNext, false
		}
		var lang string
		if info := code.Info; info != nil {
			lang = string(info)
		}
		fmt.Fprintf(w, `<div class="highlight">%s</div>`, HighlightCode(string(code.Literal), lang, syntaxTheme))
		return ast.GoToNext, true
	}
}

// Markdown renders md with the named renderer. Raw HTML in the source is
// dropped and file includes are disabled. The returned title is empty
// unless the mmark title block sets one.
func Markdown(md []byte, renderer, syntaxTheme string) ([]byte, string) {
	switch renderer {
	case RendererClassic:
		return Classic(md, syntaxTheme), ""
	default:
		out, info := Mmark(md, syntaxTheme)
		if info == nil {
			return out, ""
		}
		return out, info.Title
	}
}

// Serializes the check-render-set in MarkdownCached.
var renderCacheMutex sync.Mutex

// MarkdownCached is Markdown memoized by content hash, renderer and theme.
func MarkdownCached(md []byte, renderer, syntaxTheme string) *cache.RenderedContent {
	key := util.ContentHash(md) + ":" + renderer

	if cached, found := cache.GetRenderedMarkdown(key, syntaxTheme); found {
		renderLogger.Debug().Str("key", key).Str("syntax_theme", syntaxTheme).Msg("Cache hit for rendered markdown")
		return cached
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedMarkdown(key, syntaxTheme); found {
		return cached
	}

	renderLogger.Debug().Str("key", key).Str("syntax_theme", syntaxTheme).Msg("Cache miss for rendered markdown")
	out, title := Markdown(md, renderer, syntaxTheme)
	cache.SetRenderedMarkdown(key, syntaxTheme, out, title)

	cached, _ := cache.GetRenderedMarkdown(key, syntaxTheme)
	return cached
}

func Classic(md []byte, syntaxTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags:          md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks | md_html.SkipHTML,
		RenderNodeHook: codeBlockHook(syntaxTheme),
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

func Mmark(md []byte, syntaxTheme string) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions((mparser.Extensions | parser.NoIntraEmphasis) &^ parser.Includes)

	var info *mast.TitleData
	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		Flags: parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	language := "en"
	if info != nil && info.Language != "" {
		language = info.Language
	}
	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	codeHook := codeBlockHook(syntaxTheme)
	opts := md_html.RendererOptions{
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := codeHook(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks | md_html.SkipHTML,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts)), info
}
