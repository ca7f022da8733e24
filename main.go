package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"devserve/config"
	"devserve/logger"
	"devserve/server"
)

const bannerWidth = 60

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewServer(cfg)
	if err := srv.Start(ctx); err != nil {
		log.Fatal("Failed to start server", map[string]interface{}{
			"error": err.Error(),
			"port":  cfg.Server.Port,
		})
	}

	printStartBanner(cfg)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info("Received shutdown signal", map[string]interface{}{
		"signal": sig.String(),
	})

	cancel()
	srv.Shutdown()
	printStopBanner()
}

func printStartBanner(cfg *config.Config) {
	ruler := strings.Repeat("=", bannerWidth)
	fmt.Printf("\n%s\n", ruler)
	fmt.Println("  devserve - Development Server")
	fmt.Println(ruler)
	fmt.Printf("\n  Server running at: http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("  Serving files from: %s\n", cfg.Server.RootDir)
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Printf("\n%s\n\n", ruler)
}

func printStopBanner() {
	ruler := strings.Repeat("=", bannerWidth)
	fmt.Printf("\n\n%s\n", ruler)
	fmt.Println("  Server stopped")
	fmt.Printf("%s\n\n", ruler)
}
