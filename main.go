package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	configx "github.com/agencymesh/insurance-mcp-gateway/pkg/config"
	logx "github.com/agencymesh/insurance-mcp-gateway/pkg/logger"

	reportx "github.com/agencymesh/insurance-mcp-gateway/gateway/report"
	serverx "github.com/agencymesh/insurance-mcp-gateway/gateway/server"
	toolx "github.com/agencymesh/insurance-mcp-gateway/gateway/tool"
	upstreamx "github.com/agencymesh/insurance-mcp-gateway/gateway/upstream"
)

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	amsCfg := configx.MustNew[upstreamx.AMSConfig]("AMS")
	amsClient, err := upstreamx.NewAMSClient(*amsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AMS client")
	}

	crmCfg := configx.MustNew[upstreamx.CRMConfig]("CRM")
	crmClient, err := upstreamx.NewCRMClient(*crmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CRM client")
	}

	svc := reportx.NewService(amsClient, crmClient)
	dispatcher := toolx.NewDispatcher(svc)

	serverCfg := configx.MustNew[serverx.Config]("MCP")
	gateway, err := serverx.New(*serverCfg, toolx.Catalog(dispatcher))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MCP server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gateway.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("gateway exited")
	}
}
