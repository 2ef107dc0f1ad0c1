package llm

import (
	"context"
	"sync"
)

// Lazy defers building a Generator until the first Generate call, so
// missing credentials only matter once a prompt is actually sent.
type Lazy struct {
	build func() (Generator, error)

	once sync.Once
	gen  Generator
	err  error
}

// NewLazy returns a Generator that calls build on first use.
func NewLazy(build func() (Generator, error)) *Lazy {
	return &Lazy{build: build}
}

// Generate builds the underlying generator if needed, then delegates.
// A build failure is returned from every call.
func (l *Lazy) Generate(ctx context.Context, prompt string) (string, error) {
	l.once.Do(func() {
		l.gen, l.err = l.build()
	})
	if l.err != nil {
		return "", l.err
	}
	return l.gen.Generate(ctx, prompt)
}
