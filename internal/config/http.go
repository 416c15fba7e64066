package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	CTypeCSS         = "text/css"
	CTypeHTML        = "text/html"
	CTypeJSON        = "application/json"
	CTypeEventStream = "text/event-stream"
)

const (
	CookieSyntaxTheme = "syntax-theme"
	QuerySyntaxTheme  = "theme"
)
