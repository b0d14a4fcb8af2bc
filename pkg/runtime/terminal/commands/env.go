package commands

import (
	"context"
	"io"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

// Dashboard is the part of the dashboard service used by the commands.
type Dashboard interface {
	Load(ctx context.Context, r io.Reader, source string) (*domain.Dataset, error)
	Render(ctx context.Context, ds *domain.Dataset, req domain.ViewRequest) (domain.ViewResult, error)
}

type Env struct {
	Dashboard Dashboard
	Open      func(ctx context.Context, uri string) (io.ReadCloser, string, error)
	Close     func() error
}

type EnvOptions struct {
	ConfigPath string
	// Engine overrides analytics.engine when set.
	Engine string
}

// EnvFactory builds the runtime for a single command invocation.
type EnvFactory func(ctx context.Context, opts EnvOptions) (*Env, error)

func loadDataset(ctx context.Context, env *Env, uri string) (*domain.Dataset, error) {
	rc, name, err := env.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return env.Dashboard.Load(ctx, rc, name)
}
