package refresh

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptTag is the element injected into served HTML.
const ScriptTag = `<script type="module">` + "\n" + Preamble + `</script>`

// InjectPreamble inserts ScriptTag as the first child of <head>. Without a head it goes
// right after <html>, and without either it is prepended. The rest of the document is
// copied byte for byte.
func InjectPreamble(document string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(document))

	var (
		out      bytes.Buffer
		injected bool
		afterTag = -1
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", zerr.Wrap(err, "failed to tokenize html")
			}
			break
		}

		out.Write(z.Raw())

		if injected || tt != html.StartTagToken {
			continue
		}

		name, _ := z.TagName()
		switch atom.Lookup(name) {
		case atom.Head:
			out.WriteString(ScriptTag)
			injected = true
		case atom.Html:
			afterTag = out.Len()
		}
	}

	if injected {
		return out.String(), nil
	}

	result := out.String()
	if afterTag >= 0 {
		return result[:afterTag] + ScriptTag + result[afterTag:], nil
	}
	return ScriptTag + result, nil
}
