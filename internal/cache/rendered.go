package cache

import "html/template"

// RenderedContent is a draft preview rendered to HTML.
type RenderedContent struct {
	HTML  []byte
	Title string
}

var renderedMarkdownCache = NewCache[string, *RenderedContent]()

func GetRenderedMarkdown(contentHash, syntaxTheme string) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(contentHash + ":" + syntaxTheme)
}

func SetRenderedMarkdown(contentHash, syntaxTheme string, html []byte, title string) {
	renderedMarkdownCache.Set(contentHash+":"+syntaxTheme, &RenderedContent{
		HTML:  html,
		Title: title,
	})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}

var syntaxCache = NewCache[string, template.CSS]()

func GetSyntaxCSS(theme string) (template.CSS, bool) {
	return syntaxCache.Get(theme)
}

func SetSyntaxCSS(theme string, css template.CSS) {
	syntaxCache.Set(theme, css)
}
