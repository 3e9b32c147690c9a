// Package main provides the evaluation toolkit HTTP server.
package main

import (
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/config"
	httpHandler "go.ngs.io/salishsea-tools/internal/http"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "TOML configuration file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("evalserver version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	gin.SetMode(cfg.Server.GinMode)

	router := httpHandler.SetupRouter(httpHandler.NewHandler(log), cfg.Server.CORSOrigins)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithField("addr", addr).Info("Server listening")
	log.Infof("Health check: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Evaluation Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  evalserver [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -config FILE   TOML configuration file")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  GIN_MODE                Gin mode: debug, release or test (default: release)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               Log level (default: info)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /v1/constituents          List tidal constituents")
	fmt.Println("  GET  /v1/harmonic              Amplitude and phase from re/im")
	fmt.Println("  GET  /v1/ellipse               Tidal ellipse from u/v amplitude and phase")
	fmt.Println("  POST /v1/carbonate             Solve the carbonate system")
	fmt.Println("  GET  /v1/carbonate/phscale     pH on all four scales")
	fmt.Println()
}
