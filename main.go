// Command ludo-server starts the multiplayer Ludo server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the room WebSocket and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the preset directory, the room store, logging and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/ludo-server/api"
	"github.com/wricardo/ludo-server/game/config"
	"github.com/wricardo/ludo-server/game/service"
	"github.com/wricardo/ludo-server/game/session"
	"github.com/wricardo/ludo-server/transport/mcp"
	"github.com/wricardo/ludo-server/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ludo Server"
)

const (
	storeFile   = "file"
	storeSQLite = "sqlite"
)

// serverOptions is everything needed to wire the services, read from flags.
type serverOptions struct {
	ConfigDir   string
	Store       string
	SessionsDir string
	SQLitePath  string

	IdleTimeout     time.Duration
	FinishedTimeout time.Duration
	PurgeAfter      time.Duration
	SyncInterval    time.Duration
}

// services holds the wired components of a running server.
type services struct {
	Game     service.GameService
	Hub      *websocket.Hub
	Sessions *session.Manager
	Store    session.SessionPersistence
}

// Close stops background work and releases the room store.
func (s *services) Close() {
	s.Game.Close()
	s.Hub.Stop()
	if c, ok := s.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close room store")
		}
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("exited")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "ludo-server",
		Usage:   "multiplayer Ludo over REST, WebSocket and MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing game presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "store", Value: storeFile, Usage: "room store: file or sqlite", Sources: cli.EnvVars("STORE_DRIVER")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for the file store", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "sqlite-path", Value: "data/rooms.db", Usage: "database file for the sqlite store", Sources: cli.EnvVars("SQLITE_PATH")},
			&cli.DurationFlag{Name: "idle-timeout", Value: 24 * time.Hour, Usage: "drop rooms from memory after this long without activity"},
			&cli.DurationFlag{Name: "finished-timeout", Value: time.Hour, Usage: "delete finished rooms after this long"},
			&cli.DurationFlag{Name: "purge-after", Value: 7 * 24 * time.Hour, Usage: "delete stored rooms idle for longer than this"},
			&cli.DurationFlag{Name: "sync-interval", Value: 5 * time.Second, Usage: "how often memory is reconciled with the room store"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "log output: console or json", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.String("log-level"), cmd.String("log-format"), cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by an HTTP API",
				Action:  runStdioMCP,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

func init() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}
}

// setupLogging configures the global zerolog logger. Logs always go to
// stderr so the stdio MCP transport keeps stdout to itself.
func setupLogging(level, format string, debug bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).With().Timestamp()
	if debug {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()
}

func optionsFromCommand(cmd *cli.Command) serverOptions {
	return serverOptions{
		ConfigDir:       cmd.String("config-dir"),
		Store:           cmd.String("store"),
		SessionsDir:     cmd.String("sessions-dir"),
		SQLitePath:      cmd.String("sqlite-path"),
		IdleTimeout:     cmd.Duration("idle-timeout"),
		FinishedTimeout: cmd.Duration("finished-timeout"),
		PurgeAfter:      cmd.Duration("purge-after"),
		SyncInterval:    cmd.Duration("sync-interval"),
	}
}

// openStore creates the room store selected by opts.Store.
func openStore(opts serverOptions, configs *config.Manager) (session.SessionPersistence, error) {
	switch strings.ToLower(opts.Store) {
	case "", storeFile:
		return session.NewFilePersistence(opts.SessionsDir, configs)
	case storeSQLite:
		return session.NewSQLitePersistence(opts.SQLitePath, configs)
	default:
		return nil, fmt.Errorf("unknown store %q (use %s or %s)", opts.Store, storeFile, storeSQLite)
	}
}

// initializeServices wires the preset manager, room store, registry, hub and
// game service. Background loops are not started here.
func initializeServices(opts serverOptions) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, err := openStore(opts, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to open room store: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(store)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted rooms")
	}

	hub := websocket.NewHub()
	gameService := service.NewGameService(sessionManager, configManager, service.WithNotifier(hub))
	hub.SetActions(gameService)

	return &services{
		Game:     gameService,
		Hub:      hub,
		Sessions: sessionManager,
		Store:    store,
	}, nil
}

// startBackground runs the cleanup and store sync loops until ctx is done.
func startBackground(ctx context.Context, wg *sync.WaitGroup, svcs *services, opts serverOptions) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		cleanupRoutine(ctx, svcs.Sessions, opts)
	}()
	go func() {
		defer wg.Done()
		storeSyncRoutine(ctx, svcs.Sessions, svcs.Store, opts.SyncInterval)
	}()
}

// cleanupRoutine periodically evicts idle rooms, deletes finished ones and
// purges old records from the store.
func cleanupRoutine(ctx context.Context, manager *session.Manager, opts serverOptions) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCleanup(manager, opts)
		}
	}
}

func runCleanup(manager *session.Manager, opts serverOptions) {
	if n := manager.CleanupFinishedSessions(opts.FinishedTimeout); n > 0 {
		log.Info().Int("count", n).Msg("removed finished rooms")
	}
	if n := manager.CleanupExpiredSessions(opts.IdleTimeout); n > 0 {
		log.Info().Int("count", n).Msg("evicted idle rooms from memory")
	}
	n, err := manager.PurgePersisted(opts.PurgeAfter)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge stored rooms")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("purged stored rooms")
	}
}

// storeSyncRoutine periodically reconciles memory with the room store: rooms
// whose record was deleted out from under the server are dropped from memory,
// and rooms whose last save failed are written again.
func storeSyncRoutine(ctx context.Context, manager *session.Manager, store session.SessionPersistence, every time.Duration) {
	if store == nil || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, store); pruned > 0 {
				log.Info().Int("count", pruned).Msg("store sync: pruned orphaned rooms from memory")
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, store session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if manager.Unsaved(s.ID) {
			s.Lock()
			err := manager.Save(s.ID)
			s.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("room", s.ID).Msg("room still not saved")
			} else {
				log.Info().Str("room", s.ID).Msg("saved room after earlier failure")
			}
			continue
		}
		if store.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.Debug().Str("room", s.ID).Msg("pruned room from memory (record deleted)")
		}
	}
	return pruned
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Warn().Err(err).Msg("failed to write MCP response")
		}
	}
}

// newRootHandler mounts the API server at the root and the MCP endpoint at /mcp.
func newRootHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mux
}

// runServe starts the HTTP server with the REST API, WebSocket hub and /mcp
// endpoint, and an ngrok tunnel when enabled.
func runServe(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	svcs, err := initializeServices(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	go svcs.Hub.Run()
	startBackground(ctx, &wg, svcs, opts)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := newRootHandler(api.NewServer(svcs.Game, svcs.Hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("version", Version).Str("store", opts.Store).Msgf("starting %s", AppName)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("ws", "ws://"+addr+"/ws?room=<code>").
			Str("mcp", "http://"+addr+"/mcp").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
		log.Error().Err(err).Msg("HTTP server failed")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	if saveErr := svcs.Sessions.SaveAllSessions(); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to save rooms on shutdown")
	}
	svcs.Close()
	log.Info().Msg("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Str("domain", domain).Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("api", url+"/api").
		Str("ws", strings.Replace(url, "https://", "wss://", 1)+"/ws?room=<code>").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Warn().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiAvailable reports whether a Ludo API answers health checks at baseURL.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured host and port; otherwise it starts an internal one on a
// random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := externalURL

	if apiAvailable(externalURL) {
		log.Info().Str("url", externalURL).Msg("using external API server for MCP")
	} else {
		opts := optionsFromCommand(cmd)
		svcs, err := initializeServices(opts)
		if err != nil {
			return err
		}
		defer svcs.Close()

		bgCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		var wg sync.WaitGroup
		go svcs.Hub.Run()
		startBackground(bgCtx, &wg, svcs, opts)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(svcs.Game, svcs.Hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer func() {
			cancel()
			httpServer.Close()
			wg.Wait()
		}()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("started internal API server for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
