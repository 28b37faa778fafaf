package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/config"
	"github.com/uh-joan/icd-mcp-server/internal/mcp"
	"github.com/uh-joan/icd-mcp-server/internal/server"
	"github.com/uh-joan/icd-mcp-server/internal/tools"
	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	configFileC = flag.String("c", "", "Configuration file path (shorthand)")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP = flag.Int("p", 0, "Server port (shorthand)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	stdioMode   = flag.Bool("stdio", false, "Serve MCP over stdio instead of HTTP")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("icd-mcp-server version %s\n", config.GetVersion())
		os.Exit(0)
	}

	// .env is optional; real env vars still win inside LoadFromFile.
	godotenv.Load()

	configPath := *configFile
	if configPath == "" {
		configPath = *configFileC
	}
	if configPath == "" {
		configPath = discoverConfigPath()
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}
	config.ApplyFlagOverrides(cfg, finalPort, *serverHost)
	if *stdioMode {
		cfg.Server.Transport = "stdio"
	}

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration error:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	logger.Info().
		Str("transport", cfg.Server.Transport).
		Str("version", config.GetVersion()).
		Msg("configuration loaded")

	client := upstream.New(cfg.Upstream, logger)

	// A registry error means a broken tool descriptor; refuse to start.
	registry, err := tools.NewRegistry(client, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to build tool registry")
		os.Exit(1)
	}

	mcpSrv := mcp.NewServer(registry, logger)

	if cfg.Server.Transport == "stdio" {
		logger.Info().Msg("serving MCP over stdio")
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			logger.Error().Str("error", err.Error()).Msg("stdio server failed")
			os.Exit(1)
		}
		return
	}

	srv := server.New(cfg, registry, mcp.NewHTTPHandler(mcpSrv), logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Str("error", err.Error()).Msg("server failed to start")
			os.Exit(1)
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Str("error", err.Error()).Msg("server shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

// discoverConfigPath returns the first config file that exists, trying
// binary-relative paths before the working directory. Returns "" when
// nothing is found; defaults and env vars still apply.
func discoverConfigPath() string {
	candidates := []string{
		"icd-mcp.toml",
		"config/icd-mcp.toml",
	}

	if exe, err := os.Executable(); err == nil {
		binDir := filepath.Dir(exe)
		candidates = append([]string{
			filepath.Join(binDir, "icd-mcp.toml"),
			filepath.Join(binDir, "config", "icd-mcp.toml"),
		}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
