// Command icebound starts the Icebound Arena server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Realtime rounds are driven by a server clock; turn-based rounds only move
// through the advance endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/icebound/api"
	"github.com/wricardo/icebound/game/config"
	"github.com/wricardo/icebound/game/runner"
	"github.com/wricardo/icebound/game/service"
	"github.com/wricardo/icebound/game/session"
	"github.com/wricardo/icebound/transport/mcp"
	"github.com/wricardo/icebound/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Icebound Arena Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
	saveInterval    = 30 * time.Second
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	levelDir     = flag.String("level-dir", envOr("LEVEL_DIR", "levels"), "Directory containing level descriptors")
	sessionsDir  = flag.String("sessions-dir", envOr("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	codecName    = flag.String("codec", envOr("SESSION_CODEC", "json"), "Session file encoding: json or msgpack")
	tickLength   = flag.Duration("tick", 50*time.Millisecond, "Realtime clock resolution")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envOr returns the environment variable key, or def when it is unset
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                       # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -codec msgpack        # Store sessions as MessagePack\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp             # Run MCP stdio server\n", os.Args[0])
	}
}

// newLogger builds the process logger
func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.SetReportCaller(true)
	}
	return log
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// A missing .env is fine
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	log := newLogger(*debug)
	if envErr == nil {
		log.Debug("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		log.WithError(envErr).Warn("error loading .env file")
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.WithFields(logrus.Fields{"version": Version, "mode": mode}).Infof("starting %s", AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := initializeServices(*levelDir, *sessionsDir, *codecName, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}
	svcs.startBackground(ctx)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, svcs)

	case "server", "http":
		runHTTPServer(ctx, svcs)

	default:
		log.Fatalf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	// Realtime rounds are only saved periodically; flush them on the way out
	if err := svcs.sessions.SaveAllSessions(); err != nil {
		log.WithError(err).Warn("failed to save sessions on shutdown")
	}
}

// services holds everything the transports share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	log         *logrus.Logger
}

// initializeServices wires the level manager, session persistence and the
// game service.
func initializeServices(levelDir, sessionsDir, codecName string, log *logrus.Logger) (*services, error) {
	codec, err := session.CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	levels := config.NewManager(levelDir)
	if list, err := levels.ListLevels(); err != nil {
		log.WithError(err).WithField("dir", levelDir).Warn("level directory unavailable, using the built-in level")
	} else {
		log.WithFields(logrus.Fields{"dir": levelDir, "levels": len(list)}).Info("levels found")
	}

	persistence, err := session.NewFilePersistence(sessionsDir, levels, session.WithCodec(codec))
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	sessions.SetLogger(log)
	if err := sessions.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		game:        service.NewGameService(sessions, levels, service.WithLogger(log)),
		sessions:    sessions,
		persistence: persistence,
		log:         log,
	}, nil
}

// startBackground launches session housekeeping until ctx is done
func (s *services) startBackground(ctx context.Context) {
	go s.sessionCleanupRoutine(ctx)
	go s.filesystemSyncRoutine(ctx)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func (s *services) sessionCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessions.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				s.log.WithField("count", removed).Info("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions whose files were deleted and saves
// realtime rounds, which the clock advances without persisting.
func (s *services) filesystemSyncRoutine(ctx context.Context) {
	syncTicker := time.NewTicker(syncInterval)
	defer syncTicker.Stop()
	save := time.NewTicker(saveInterval)
	defer save.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			if pruned := s.sessions.PruneMissing(); pruned > 0 {
				s.log.WithField("count", pruned).Info("pruned sessions whose files were deleted")
			}
		case <-save.C:
			if err := s.sessions.SaveAllSessions(); err != nil {
				s.log.WithError(err).Warn("periodic session save failed")
			}
		}
	}
}

// startRealtime runs the websocket hub and the realtime clock that pushes
// through it
func (s *services) startRealtime(ctx context.Context) *websocket.Hub {
	hub := websocket.NewHub(s.game, s.log.WithField("component", "websocket"))
	go hub.Run(ctx)

	clock := runner.NewRunner(s.game,
		runner.WithTickLength(*tickLength),
		runner.WithPublisher(hub),
		runner.WithLogger(s.log.WithField("component", "runner")),
	)
	go clock.Start(ctx)
	return hub
}

// newHandler combines the REST API, WebSocket route and the /mcp endpoint
func newHandler(s *services, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(s.game, hub, api.WithLogger(s.log.WithField("component", "api")))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, s *services) {
	log := s.log
	hub := s.startRealtime(ctx)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	handler := newHandler(s, hub, fmt.Sprintf("http://%s", addr))

	// No write timeout: websocket connections are long-lived
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"rest": fmt.Sprintf("http://%s/api", addr),
			"ws":   fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":  fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if env := os.Getenv("NGROK_ENABLED"); env == "true" || env == "1" {
		ngrokShouldRun = true
	}
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, handler, log)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
}

// runTunnel serves handler through an ngrok endpoint until ctx is done
func runTunnel(ctx context.Context, handler http.Handler, log logrus.FieldLogger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Warn("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	log.WithField("url", tun.URL()).Info("ngrok tunnel established")
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.WithError(err).Warn("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s *services) {
	log := s.log
	externalURL := "http://localhost:8080"
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		log.WithField("url", externalURL).Info("using external API server for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.WithError(err).Fatal("failed to get available port")
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		hub := s.startRealtime(ctx)
		httpServer := &http.Server{Handler: newHandler(s, hub, baseURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Warn("internal HTTP server error")
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
		log.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.WithError(err).Fatal("MCP stdio server error")
	}
}
