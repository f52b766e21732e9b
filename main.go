package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"server_kagero/internal/action"
	"server_kagero/internal/client"
	"server_kagero/internal/config"
	"server_kagero/internal/dataType"
	"server_kagero/internal/lookup"
	"server_kagero/internal/server"
	"server_kagero/internal/utils"
)

func main() {
	var basePath string
	var agentURL string
	var agentHost string
	flag.StringVar(&basePath, "prefix", "", "Config file base path")
	flag.StringVar(&agentURL, "agent", "", "Run as a polling agent against this config endpoint")
	flag.StringVar(&agentHost, "agent-host", "", "Hostname the agent evaluates against the domain allow-list")
	flag.Parse()

	// Load MainConfig
	cfg, err := config.LoadMainConfig(basePath)
	if err != nil {
		log.Fatalf("Load config failed: %v", err)
	}

	utils.InitLogx(cfg.LogPath)

	if agentURL != "" {
		runAgent(cfg, agentURL, agentHost)
		return
	}

	// Load the gate configuration; a load failure falls back to the
	// default record, which stays authoritative in memory.
	store := config.NewStore(cfg.StorePath)
	if err := store.Load(); err != nil {
		log.Printf("Load gate config failed, using defaults: %v", err)
	}

	log.Printf("Ready to start server on port %s", cfg.Port)

	// Start server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(cfg, store)
	}()

	select {
	case <-stop:
		log.Println("Stopping server...")
	case err := <-serverErr:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}

	log.Println("Server stopped")
}

// runAgent polls the published configuration and evaluates this node's own
// visit facts against it, logging each outcome.
func runAgent(cfg *config.MainConfig, configURL, host string) {
	interval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	runner := &client.Runner{
		ConfigURL: configURL,
		Host:      host,
		UserAgent: "server-kagero-agent/" + dataType.ServerKageroVersion,
		Interval:  interval,
		SelfIP:    lookup.NewHTTPSelfIPResolver(cfg.SelfIPEndpoint),
		Geo:       lookup.NewHTTPGeoResolver(cfg.GeoIPEndpoint),
		Detector:  lookup.NewHTTPBotDetector(cfg.BotDetectEndpoint),
		OnOutcome: func(outcome action.Outcome) {
			if outcome.Blocked {
				log.Printf("agent: blocked code=%s reason=%s", outcome.Code, outcome.Reason)
				return
			}
			log.Printf("agent: allowed")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	log.Printf("Agent polling %s every %s", configURL, interval)
	runner.Run(ctx)
	log.Println("Agent stopped")
}
