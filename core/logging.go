package core

import (
	"io"
	"log/slog"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

type LogOptions struct {
	Level slog.Level
	// Console receives colored output, nothing is written to the console if it is nil
	Console io.Writer
	// File receives plain text output in addition to the console, if set
	File io.Writer
}

// NewLogger creates a logger whose console lines are prefixed with prefix
func NewLogger(prefix string, opts LogOptions) *slog.Logger {
	handlers := make([]slog.Handler, 0)
	if opts.Console != nil {
		handlers = append(handlers,
			tint.NewHandler(opts.Console, &tint.Options{
				Level:        opts.Level,
				AddSource:    false,
				CustomPrefix: prefix,
				ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
					if attr.Key == "time" {
						return slog.Attr{}
					}
					return attr
				},
			}))
	}
	if opts.File != nil {
		var h slog.Handler = slog.NewTextHandler(opts.File, &slog.HandlerOptions{Level: opts.Level})
		if prefix != "" {
			h = h.WithAttrs([]slog.Attr{slog.String("node", prefix)})
		}
		handlers = append(handlers, h)
	}
	return slog.New(
		slogmulti.Fanout(handlers...))
}
