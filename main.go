package main

import (
	"context"

	"github.com/rs/zerolog/log"

	assistantx "github.com/idurar/emily-assistant/agent/assistant"
	gatewayx "github.com/idurar/emily-assistant/agent/gateway"
	llmx "github.com/idurar/emily-assistant/agent/llm"
	storex "github.com/idurar/emily-assistant/agent/store"
	toolx "github.com/idurar/emily-assistant/agent/tool"
	configx "github.com/idurar/emily-assistant/pkg/config"
	_ "github.com/idurar/emily-assistant/pkg/logger/autoload"
	serverx "github.com/idurar/emily-assistant/server"
)

func main() {
	ctx := context.Background()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	storeCfg := configx.MustNew[storex.Config]("POSTGRES")
	serverCfg := configx.MustNew[serverx.Config]("SERVER")

	recordStore, err := storex.NewPostgresStore(*storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize record store")
	}
	if err := recordStore.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure record store schema")
	}

	executor, err := toolx.NewExecutor(recordStore)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize tool executor")
	}

	modelGateway, err := gatewayx.New(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model gateway")
	}

	emily, err := assistantx.New(modelGateway, executor.Execute)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize assistant")
	}

	srv := serverx.New(*serverCfg, emily)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
