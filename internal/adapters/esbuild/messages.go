package esbuild

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// FormatMessages renders esbuild diagnostics as "file:line:col: text".
// Columns are reported 1-based.
func FormatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, formatMessage(msg))
	}
	return out
}

func formatMessage(msg api.Message) string {
	loc := msg.Location
	if loc == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column+1, msg.Text)
}
