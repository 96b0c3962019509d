package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// PrettyHandler writes one colored line per record: a level icon, the message and
// dimmed key=value pairs. esbuild calls plugin hooks from many goroutines, so
// writes are serialized.
type PrettyHandler struct {
	out    *termenv.Output
	mu     *sync.Mutex
	level  slog.Leveler
	prefix string
	// preformatted holds attrs added with WithAttrs, already qualified by prefix.
	preformatted []string
}

// NewPrettyHandler creates a PrettyHandler writing to w, or stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		mu:    &sync.Mutex{},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

type levelLook struct {
	icon  string
	color termenv.Color
}

func lookFor(level slog.Level) levelLook {
	switch {
	case level >= slog.LevelError:
		return levelLook{icon: style.Cross, color: termenv.RGBColor(string(style.Red))}
	case level >= slog.LevelWarn:
		return levelLook{icon: style.Warning, color: termenv.RGBColor(string(style.Amber))}
	case level >= slog.LevelInfo:
		return levelLook{color: termenv.RGBColor(string(style.Slate))}
	default:
		return levelLook{icon: style.Dot, color: termenv.RGBColor(string(style.Slate))}
	}
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	look := lookFor(r.Level)

	msg := r.Message
	if look.icon != "" {
		msg = look.icon + " " + msg
	}

	pairs := append([]string(nil), h.preformatted...)
	r.Attrs(func(attr slog.Attr) bool {
		pairs = appendAttr(pairs, h.prefix, attr)
		return true
	})

	var line strings.Builder
	line.WriteString(h.out.String(msg).Foreground(look.color).String())
	if len(pairs) > 0 {
		line.WriteString(" ")
		attrs := h.out.String(strings.Join(pairs, " "))
		if h.out.Profile != termenv.Ascii {
			attrs = attrs.Faint()
		}
		line.WriteString(attrs.String())
	}
	line.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(line.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preformatted = append([]string(nil), h.preformatted...)
	for _, attr := range attrs {
		next.preformatted = appendAttr(next.preformatted, h.prefix, attr)
	}
	return &next
}

// WithGroup implements slog.Handler. Groups nest: keys are joined with dots.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(pairs []string, prefix string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return pairs
	}
	value := attr.Value

	if value.Kind() == slog.KindGroup {
		nested := prefix
		if attr.Key != "" {
			nested += attr.Key + "."
		}
		for _, member := range value.Group() {
			pairs = appendAttr(pairs, nested, member)
		}
		return pairs
	}

	return append(pairs, prefix+attr.Key+"="+quoteIfNeeded(value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
