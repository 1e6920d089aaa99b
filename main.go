// Command lightrace starts the light race party game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the WebSocket game
//     transport, the QR onboarding endpoint, static pages, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs the MCP host interface over stdio against an in-process game
//
// Flags control host/port, the static assets directory, debug logging, version
// output, and optional ngrok tunneling so phones outside the LAN can join.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/pmmsinno/lightrace/api"
	"github.com/pmmsinno/lightrace/game/service"
	"github.com/pmmsinno/lightrace/game/session"
	"github.com/pmmsinno/lightrace/transport/mcp"
	"github.com/pmmsinno/lightrace/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Light Race Game Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "0.0.0.0", "HTTP server host")
	staticDir    = flag.String("static-dir", getStaticDirDefault(), "Directory containing the display and controller pages")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getStaticDirDefault returns the default static assets directory.
// It first honors the STATIC_DIR environment variable, then falls back to "static".
func getStaticDirDefault() string {
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		return dir
	}
	return "static"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with game transport and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio host interface\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run the game server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ngrok             # Expose the game through an ngrok tunnel\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run the MCP host interface over stdio\n", os.Args[0])
	}
}

// main parses flags, wires the game, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envLoaded := godotenv.Load() == nil

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	log := newLogger(*debug)
	if envLoaded {
		log.Info().Msg("loaded environment variables from .env file")
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Info().Str("version", Version).Str("mode", mode).Msg("starting " + AppName)

	// Wire the game: hub <-> session <-> service. The hub needs the service
	// for inbound actions and the session needs the hub for broadcasts, so
	// the service is bound last.
	hub := websocket.NewHub(log.With().Str("component", "hub").Logger())
	sess := session.New(hub, session.WithLogger(log.With().Str("component", "session").Logger()))
	gameService := service.NewGameService(sess)
	hub.Bind(gameService)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(log, gameService)

	case "server", "http":
		runHTTPServer(log, gameService, hub)

	default:
		log.Fatal().Str("mode", mode).Msg("unknown mode, use 'server' (default) or 'stdio-mcp'")
	}
}

// newLogger builds the root logger. Debug mode switches to human-readable
// console output.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	var out io.Writer = os.Stderr
	if debug {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// runHTTPServer starts the HTTP server with the game transport, static pages,
// and an /mcp endpoint. If ngrok is enabled (via flag or environment), it also
// provisions a public tunnel so phones outside the LAN can scan in.
func runHTTPServer(log zerolog.Logger, gameService service.GameService, hub *websocket.Hub) {
	apiServer := api.NewServer(gameService, hub, *staticDir, log.With().Str("component", "api").Logger())

	addr := fmt.Sprintf("%s:%d", *host, *port)

	// MCP host interface mounted next to the game.
	admin := mcp.NewAdmin(gameService)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := admin.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mainRouter,
		// No WriteTimeout: it would kill long-lived WebSocket connections.
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("Display: http://%s/", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws", addr)
		log.Info().Msgf("QR code: http://%s/qr", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, log, mainRouter)
		}()
	}

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
}

// runNgrokTunnel serves the same router through a public ngrok endpoint. The
// QR code derives the join URL from the request host, so scanned phones land
// on the tunnel automatically.
func runNgrokTunnel(ctx context.Context, log zerolog.Logger, handler http.Handler) {
	// Support both naming conventions for the token.
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(authToken),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().Str("url", url).Msg("ngrok tunnel established")
	log.Info().Msgf("Display (ngrok): %s/", url)
	log.Info().Msgf("QR code (ngrok): %s/qr", url)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// runStdioMCP serves the host interface over stdio against the in-process
// game. Useful for letting an assistant run a game night from a terminal.
func runStdioMCP(log zerolog.Logger, gameService service.GameService) {
	admin := mcp.NewAdmin(gameService)

	log.Info().Msg("MCP stdio host interface ready")
	if err := server.ServeStdio(admin.GetMCPServer()); err != nil {
		log.Fatal().Err(err).Msg("MCP stdio server error")
	}
}
