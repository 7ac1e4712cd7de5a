// Command recall indexes personal browsing history and serves search over
// HTTP and MCP.
//
// Usage:
//
//	recall -config recall.yaml                 # run with config file
//	recall -db recall.db -snapshot export.json # run with defaults
//	recall -db recall.db -search "query"       # search and exit
//	recall -db recall.db -stats                # show stats and exit
//	recall -db recall.db -reindex              # rebuild the FTS index and exit
//	recall -config recall.yaml -mcp            # serve MCP over stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/Zetaphor/browser-recall/recall"
	"github.com/Zetaphor/browser-recall/shield"
	"github.com/Zetaphor/browser-recall/source"
)

const version = "0.1.0"

type options struct {
	configPath   string
	dbPath       string
	snapshotPath string
	listenAddr   string
	searchQuery  string
	showStats    bool
	reindex      bool
	mcpMode      bool
	limit        int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to recall.yaml config file")
	flag.StringVar(&opts.dbPath, "db", "", "path to SQLite database")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "path to the browser snapshot JSON")
	flag.StringVar(&opts.listenAddr, "listen", ":8214", "HTTP listen address")
	flag.StringVar(&opts.searchQuery, "search", "", "search query (exit after results)")
	flag.BoolVar(&opts.showStats, "stats", false, "show stats and exit")
	flag.BoolVar(&opts.reindex, "reindex", false, "rebuild the full-text index and exit")
	flag.BoolVar(&opts.mcpMode, "mcp", false, "serve MCP over stdio instead of HTTP")
	flag.IntVar(&opts.limit, "limit", 20, "max search results")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("recall: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	provider := source.NewFileProvider(cfg.SnapshotPath)
	svc, err := recall.New(cfg, provider, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	// One-shot: search.
	if opts.searchQuery != "" {
		results, err := svc.Search(ctx, recall.SearchOptions{
			Term:  opts.searchQuery,
			Limit: opts.limit,
		})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		return printJSON(results)
	}

	// One-shot: stats.
	if opts.showStats {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return printJSON(stats)
	}

	// One-shot: reindex.
	if opts.reindex {
		if err := svc.Reindex(ctx); err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		logger.Info("recall: reindex complete")
		return nil
	}

	svc.Start(ctx)

	if opts.mcpMode {
		server := mcp.NewServer(&mcp.Implementation{Name: "recall", Version: version}, nil)
		svc.RegisterMCP(server)
		logger.Info("recall: serving MCP over stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	r := chi.NewRouter()
	r.Use(shield.RequestLogger(logger))
	r.Use(shield.SecurityHeaders())
	r.Use(shield.MaxBody(1 << 20))
	svc.RegisterHTTP(r)
	httpServer := &http.Server{
		Addr:              opts.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("recall: listening", "addr", opts.listenAddr, "db", cfg.DBPath)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("recall: shutting down")
	return nil
}

func resolveConfig(opts options) (*recall.Config, error) {
	if opts.configPath != "" {
		return recall.LoadConfigFile(opts.configPath)
	}

	cfg := &recall.Config{}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.snapshotPath != "" {
		cfg.SnapshotPath = opts.snapshotPath
	}

	if cfg.DBPath == "" {
		fmt.Fprintln(os.Stderr, "usage: recall -config <file> | -db <path> -snapshot <file> [-search <query>] [-stats] [-mcp]")
		os.Exit(1)
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
