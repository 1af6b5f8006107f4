// Package logger owns the gateway's root zerolog logger.
//
// Init builds it once at startup. Components take a child logger from
// Component so every entry names the part of the gateway that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the root logger is built.
type Options struct {
	// Level is the minimum level (trace, debug, info, warn, error). Unknown
	// or empty values mean info.
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Instance are stamped on every entry when set. Instance
	// tells gateways sharing one event bus apart.
	Service  string
	Instance string
}

var (
	root atomic.Pointer[zerolog.Logger]
	once sync.Once
)

// Init builds the root logger. Only the first call has any effect; later
// calls return the logger built by the first.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		fields := zerolog.New(out).Level(lvl).With().Timestamp()
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}
		if opts.Instance != "" {
			fields = fields.Str("instance", opts.Instance)
		}
		// File and line only pay off when someone is debugging.
		if lvl <= zerolog.DebugLevel {
			fields = fields.Caller()
		}
		l := fields.Logger()
		root.Store(&l)
	})
	return Get()
}

// Get returns the root logger. It panics before Init.
func Get() zerolog.Logger {
	l := root.Load()
	if l == nil {
		panic("logger: Get() called before Init()")
	}
	return *l
}

// Component returns a child of the root logger tagged with name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset discards the root logger so tests can call Init again.
func Reset() {
	once = sync.Once{}
	root.Store(nil)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
