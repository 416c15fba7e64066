package config

const (
	DefaultSyntaxTheme = "gruvbox"
)
