// Package theme picks chroma syntax themes for draft previews and builds
// their CSS.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/ghostwriter/internal/cache"
	"github.com/debemdeboas/ghostwriter/internal/config"
)

// SyntaxThemeFromRequest returns the theme named by the ?theme= query
// parameter, then the syntax-theme cookie, then fallback. Unknown names
// are ignored.
func SyntaxThemeFromRequest(r *http.Request, fallback string) string {
	if name := r.URL.Query().Get(config.QuerySyntaxTheme); IsKnown(name) {
		return name
	}
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && IsKnown(cookie.Value) {
		return cookie.Value
	}
	if IsKnown(fallback) {
		return fallback
	}
	return config.DefaultSyntaxTheme
}

func IsKnown(name string) bool {
	if name == "" {
		return false
	}
	_, ok := styles.Registry[name]
	return ok
}

func SyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func Formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// SyntaxCSS returns the stylesheet for name, generating and caching it on
// first use.
func SyntaxCSS(name string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(name); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(name)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Some styles have no text colour; derive one from the background.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	Formatter().WriteCSS(&buf, style)
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(name, css)
	return css
}
