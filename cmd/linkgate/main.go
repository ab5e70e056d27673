package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poyrazK/linkgate/internal/adapters/api"
	"github.com/poyrazK/linkgate/internal/adapters/repository"
	"github.com/poyrazK/linkgate/internal/config"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/poyrazK/linkgate/internal/core/services"
	"github.com/poyrazK/linkgate/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("linkgate: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}

	handler, kv := newApp(cfg, store, logger)
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	if cfg.InternalKey == "" {
		logger.Warn("LINKGATE_INTERNAL_KEY is not set; internal override disabled")
	}
	logger.Info("starting linkgate", "store", cfg.Store, "cache_ttl", cfg.CacheTTL.String())

	srv := server.NewServer(cfg.Addr, handler, logger)
	srv.ReusePort = cfg.ReusePort
	return srv.Run(ctx)
}

// newApp builds the lookup stack over store. The returned store is the one
// the caller must close; it wraps store when the read cache is enabled.
func newApp(cfg *config.Config, store ports.KVStore, logger *slog.Logger) (http.Handler, ports.KVStore) {
	kv := store
	if cfg.CacheTTL > 0 {
		kv = repository.NewCachedStore(store, cfg.CacheTTL)
	}

	repo := repository.NewKVRepository(kv)
	resolver := services.NewCredentialResolver(repo, cfg.InternalKey)
	svc := services.NewLookupService(repo, resolver, cfg.FetchConcurrency, logger)
	return api.NewAPIHandler(svc, logger).Handler(), kv
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", s)
		return slog.LevelInfo
	}
	return l
}
