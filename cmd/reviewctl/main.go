package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"review_mapper/internal/adapters/observability"
	"review_mapper/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
