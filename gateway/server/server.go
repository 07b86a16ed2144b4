// Package server hosts the MCP server over stdio or streamable HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "insurance-agency-gateway"
	serverVersion = "1.0.0"

	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

type Config struct {
	Transport string `envconfig:"TRANSPORT" split_words:"true" default:"stdio"`
	Addr      string `envconfig:"ADDR" split_words:"true" default:":8090"`
}

// Gateway wraps the MCP server and its transport.
type Gateway struct {
	config Config
	mcp    *mcpserver.MCPServer
}

func New(cfg Config, tools []mcpserver.ServerTool) (*Gateway, error) {
	switch cfg.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}

	s := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
	)
	s.AddTools(tools...)

	return &Gateway{config: cfg, mcp: s}, nil
}

// Run serves until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	switch g.config.Transport {
	case TransportStreamableHTTP:
		return g.runStreamableHTTP(ctx)
	default:
		log.Info().Str("transport", TransportStdio).Msg("serving MCP gateway")
		if err := mcpserver.NewStdioServer(g.mcp).Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
}

func (g *Gateway) runStreamableHTTP(ctx context.Context) error {
	httpServer := mcpserver.NewStreamableHTTPServer(g.mcp)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("transport", TransportStreamableHTTP).Str("addr", g.config.Addr).Msg("serving MCP gateway")
		if err := httpServer.Start(g.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("streamable http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
