// Package main implements the parlgraph API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/parlgraph/parlgraph/engine/graph"
	"github.com/parlgraph/parlgraph/engine/semantic"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/parlgraph/parlgraph/pkg/config"
	"github.com/parlgraph/parlgraph/pkg/metrics"
	"github.com/parlgraph/parlgraph/pkg/mid"
	"github.com/parlgraph/parlgraph/pkg/ollama"
	"github.com/parlgraph/parlgraph/pkg/resilience"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("PARLGRAPH_CONFIG"))
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	// --- Connect to Neo4j ---
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Password, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(context.Background())

	// --- Connect to NATS (optional) ---
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("parlgraph-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
	}

	breaker := resilience.NewBreaker(resilience.BreakerOpts{
		FailThreshold: cfg.Breaker.FailThreshold,
		Timeout:       cfg.Breaker.Timeout,
		HalfOpenMax:   1,
		IsFailure:     graph.IsStoreFailure,
		OnStateChange: func(from, to resilience.State) {
			reg.SetBreakerState(int(to))
			logger.Warn("graph store breaker state changed", "from", from.String(), "to", to.String())
			if nc != nil {
				publishBreakerEvent(nc, cfg.NATS.SubjectPrefix, from, to, logger)
			}
		},
	})
	graphStore := graph.New(neo4jDriver, cfg.Neo4j.Database,
		graph.WithBreaker(breaker),
		graph.WithFullTextIndex(cfg.Neo4j.FullTextIndex),
	)

	opts := service.Options{
		QuestionPeriodMarker: cfg.Engine.QuestionPeriodMarker,
		Workers:              cfg.Engine.Workers,
		Timeout:              cfg.Engine.QueryTimeout,
		Observer:             reg,
		Logger:               logger,
	}

	// --- Connect to Qdrant (optional) ---
	if cfg.SemanticEnabled() {
		index, err := semantic.New(cfg.Qdrant.URL, cfg.Qdrant.Collection)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer index.Close()
		if err := index.Ping(ctx); err != nil {
			logger.Warn("statement collection unavailable", "collection", cfg.Qdrant.Collection, "err", err)
		}
		opts.Index = index
		opts.Embedder = ollama.New(cfg.Ollama.URL, cfg.Ollama.Model)
	}

	svc := service.New(graphStore, opts)

	if nc != nil {
		if err := serveNATS(nc, svc, cfg.NATS.SubjectPrefix, cfg.NATS.QueueGroup, logger); err != nil {
			return err
		}
		logger.Info("nats responder listening", "prefix", cfg.NATS.SubjectPrefix, "queue", cfg.NATS.QueueGroup)
	}

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	routes(mux, svc, logger)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.OTel("parlgraph-api"),
		mid.CORS(cfg.HTTP.CORSOrigin),
		mid.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Engine.QueryTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.HTTP.Port, "semantic", cfg.SemanticEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
