//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"ruleforty/internal/config"
)

func buildAppWithWire(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(appSet)
	return nil, nil
}
