//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/raid"
)

// initializeService builds the raid service from configuration.
func initializeService(cfg config.Config, sink raid.ReportSink, logger *zap.Logger) (*raid.Service, error) {
	wire.Build(lootSet)
	return nil, nil
}
