package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shivavenkatesh/bigtext/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Every operation is exposed as a JSON POST endpoint
that takes the same parameters as the command line.

Examples:
  bigtext serve
  bigtext serve --port 3457
  bigtext serve --host 0.0.0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 3457)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default 127.0.0.1)")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, err := initService()
	if err != nil {
		return err
	}

	host, port := cfg.Server.Host, cfg.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(svc, server.Config{
		Host: host,
		Port: port,
	}, nil)

	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		fmt.Println("\nShutting down...")
		srv.Shutdown()
	}()

	fmt.Printf("bigtext server listening on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  POST /length      - Count characters")
	fmt.Println("  POST /index       - Find a pattern")
	fmt.Println("  POST /replace     - Replace occurrences")
	fmt.Println("  POST /split       - Split into parts")
	fmt.Println("  POST /join        - Append texts and files")
	fmt.Println("  POST /insert      - Insert at an offset")
	fmt.Println("  POST /case        - Upper or lower case")
	fmt.Println("  POST /trim        - Strip whitespace")
	fmt.Println("  POST /substring   - Extract a range")
	fmt.Println("  GET  /runs        - List recorded runs")
	fmt.Println("  GET  /runs/:id    - Get a run")
	fmt.Println("  DELETE /runs      - Clear recorded runs")
	fmt.Println("  GET  /stats       - Get statistics")
	fmt.Println("  GET  /health      - Health check")

	err = srv.Start()
	svc.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
