package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightMarkdown renders the markdown source itself, highlighted, for
// the preview's source view.
func HighlightMarkdown(markdown string, syntaxTheme string) (string, error) {
	lexer := lexers.Get("markdown")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := html.New(
		html.WithClasses(true),
		html.WithLineNumbers(false),
		html.PreventSurroundingPre(true),
	)

	var buf bytes.Buffer
	iterator, err := lexer.Tokenise(nil, markdown)
	if err != nil {
		return "", err
	}

	if err := formatter.Format(&buf, styles.Get(syntaxTheme), iterator); err != nil {
		return "", err
	}

	result := `<div class="markdown-source">` + buf.String() + `</div>`
	return strings.ReplaceAll(result, "\n", "<br>\n"), nil
}
