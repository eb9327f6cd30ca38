package docs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/procexec"
)

// DefaultManWidth is the column width requested from man.
const DefaultManWidth = 100

// Fetcher retrieves documentation from the network.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// Resolver runs the documentation chain: man page, then --help, then -h,
// then a fixed fallback message. Online lookup is separate and only runs
// when asked for.
type Resolver struct {
	runner   procexec.Runner
	online   Fetcher
	manWidth int
	logger   zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithManWidth sets MANWIDTH for man invocations.
func WithManWidth(width int) Option {
	return func(r *Resolver) {
		if width > 0 {
			r.manWidth = width
		}
	}
}

// WithOnline enables Resolver.Online.
func WithOnline(f Fetcher) Option {
	return func(r *Resolver) { r.online = f }
}

// WithLogger sets the logger used for per-step diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver that runs helper tools through runner.
func NewResolver(runner procexec.Runner, opts ...Option) *Resolver {
	r := &Resolver{
		runner:   runner,
		manWidth: DefaultManWidth,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns documentation for app. It never fails: when no strategy
// produces text the fallback message is returned.
func (r *Resolver) Get(ctx context.Context, app string) Result {
	app = strings.TrimSpace(app)
	if !Runnable(app) {
		return Fallback(app)
	}

	steps := []struct {
		source Source
		lookup func(context.Context, string) (string, error)
	}{
		{SourceMan, r.man},
		{SourceHelp, r.help},
	}
	for _, step := range steps {
		if ctx.Err() != nil {
			break
		}
		text, err := step.lookup(ctx, app)
		if err == nil {
			return Result{Text: text, Source: step.source}
		}
		r.logger.Debug().Err(err).Str("app", app).Str("source", string(step.source)).Msg("lookup step empty")
	}
	return Fallback(app)
}

// Online fetches documentation from the configured URL pattern, falling
// back to the fixed message on any failure.
func (r *Resolver) Online(ctx context.Context, app string) Result {
	app = strings.TrimSpace(app)
	if r.online == nil || app == "" {
		return Fallback(app)
	}
	raw, err := r.online.Fetch(ctx, app)
	if err != nil {
		r.logger.Debug().Err(err).Str("app", app).Msg("online lookup failed")
		return Fallback(app)
	}
	text := Clean(raw)
	if text == "" {
		return Fallback(app)
	}
	return Result{Text: text, Source: SourceOnline}
}

func (r *Resolver) man(ctx context.Context, app string) (string, error) {
	return r.run(ctx, procexec.Command{
		Name: "man",
		Args: []string{app},
		Env: []string{
			"MANPAGER=cat",
			"PAGER=cat",
			"MANWIDTH=" + strconv.Itoa(r.manWidth),
			"MAN_KEEP_FORMATTING=0",
		},
	})
}

func (r *Resolver) help(ctx context.Context, app string) (string, error) {
	var errs []error
	for _, flag := range []string{"--help", "-h"} {
		text, err := r.run(ctx, procexec.Command{Name: app, Args: []string{flag}})
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// run executes c and classifies every failure, including a missing binary
// and a timeout, as ErrLookupEmpty.
func (r *Resolver) run(ctx context.Context, c procexec.Command) (string, error) {
	out, err := r.runner.Run(ctx, c)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrLookupEmpty, c, err)
	}
	text := Clean(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty output", ErrLookupEmpty, c)
	}
	return text, nil
}

// Runnable reports whether app may be passed to man or executed. Paths,
// option-like names and names with whitespace are refused.
func Runnable(app string) bool {
	if app == "" || strings.HasPrefix(app, "-") {
		return false
	}
	return !strings.ContainsFunc(app, func(r rune) bool {
		return r == '/' || r == '\\' || r == 0 || r == ' ' || r == '\t' || r == '\n'
	})
}
