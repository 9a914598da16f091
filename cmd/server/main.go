//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/himanishpuri/OsuBridge/internal/config"
	"github.com/himanishpuri/OsuBridge/pkg/logger"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "Path to SQLite database")
	origins := flag.String("origins", strings.Join(cfg.AllowedOrigins, ","), "Comma-separated list of allowed CORS origins (use * for all)")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logCfg)

	service, err := catalog.NewService(
		catalog.WithDBPath(*dbPath),
		catalog.WithConcurrency(cfg.ImportWorkers),
		catalog.WithLogger(log),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           *port,
		DBPath:         *dbPath,
		AllowedOrigins: splitOrigins(*origins),
	}, log)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func splitOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
