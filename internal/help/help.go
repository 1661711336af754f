// Package help renders the user guide shown by `rstudio info`.
package help

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gookit/color"
)

//go:embed guide.md
var guide string

var inlineCode = regexp.MustCompile("`([^`]+)`")

var (
	titleStyle   = color.New(color.FgCyan, color.OpBold)
	headingStyle = color.New(color.FgYellow, color.OpBold)
	codeStyle    = color.New(color.FgCyan)
	blockStyle   = color.New(color.FgGray)
)

// Guide returns the raw Markdown guide.
func Guide() string {
	return guide
}

// Render writes the guide to w. Markdown markup is replaced by terminal
// styling when colored is set and left in place otherwise.
func Render(w io.Writer, colored bool) error {
	if !colored {
		_, err := io.WriteString(w, guide)
		return err
	}

	inBlock := false
	for _, line := range strings.Split(strings.TrimRight(guide, "\n"), "\n") {
		var out string
		switch {
		case strings.HasPrefix(line, "```"):
			inBlock = !inBlock
			continue
		case inBlock:
			out = "    " + blockStyle.Sprint(line)
		case strings.HasPrefix(line, "# "):
			out = titleStyle.Sprint(strings.TrimPrefix(line, "# "))
		case strings.HasPrefix(line, "## "):
			out = headingStyle.Sprint(strings.TrimPrefix(line, "## "))
		case strings.HasPrefix(line, "- "):
			out = "  • " + styleInline(strings.TrimPrefix(line, "- "))
		default:
			out = styleInline(line)
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
	return nil
}

func styleInline(line string) string {
	return inlineCode.ReplaceAllStringFunc(line, func(m string) string {
		return codeStyle.Sprint(strings.Trim(m, "`"))
	})
}
