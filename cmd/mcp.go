package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/govtwool/govtwool-backend/ui/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the governance MCP server using SSE",
	Long:  `Start a governance MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. This lets AI agents query DReps, governance actions and voter participation.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("mcp-port", "", "Port for the SSE MCP server")
	mcpCmd.Flags().String("mcp-host", "", "Host for the SSE MCP server")
}

func mcpServer(cmd *cobra.Command, _ []string) {
	if port, _ := cmd.Flags().GetString("mcp-port"); port != "" {
		cfg.MCP.Port = port
	}
	if host, _ := cmd.Flags().GetString("mcp-host"); host != "" {
		cfg.MCP.Host = host
	}

	services, err := newApplication(cfg)
	if err != nil {
		logrus.Fatalf("[MCP] failed to start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if services.warmer != nil {
		services.warmer.Start(ctx)
	}

	mcpServer := server.NewMCPServer(
		"GovTwool Governance MCP Server",
		cfg.App.Version,
		server.WithToolCapabilities(true),
	)

	queryHandler := mcp.InitMcpQuery(services.governanceUsecase, services.participationUsecase, services.cacheUsecase)
	queryHandler.AddQueryTools(mcpServer)

	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", cfg.MCP.Host, cfg.MCP.Port)),
		server.WithKeepAlive(true),
	)

	addr := fmt.Sprintf("%s:%s", cfg.MCP.Host, cfg.MCP.Port)
	logrus.Printf("Starting governance MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s/sse", addr)
	logrus.Printf("Message endpoint: http://%s/message", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		cancel()
		if err := sseServer.Shutdown(context.Background()); err != nil {
			logrus.Errorf("[MCP] Error during SSE shutdown: %v", err)
		}
	}()

	if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Errorf("[MCP] SSE server stopped: %v", err)
	}
	services.Close()
}
