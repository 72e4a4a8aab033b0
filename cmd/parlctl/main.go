// Package main provides parlctl, a command-line client for the parlgraph
// query engine. Without --nats it queries the graph store directly; with
// --nats it sends requests to a running API server's responder.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
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
	"github.com/parlgraph/parlgraph/pkg/natsutil"
	"github.com/parlgraph/parlgraph/pkg/ollama"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd(openBackend).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend executes one named operation and returns its JSON result.
type backend interface {
	Invoke(ctx context.Context, op string, req any) (json.RawMessage, error)
	Close() error
}

type options struct {
	configPath string
	natsURL    string
	prefix     string
	timeout    time.Duration
	pretty     bool
}

type app struct {
	opts options
	open func(options) (backend, error)
}

func rootCmd(open func(options) (backend, error)) *cobra.Command {
	a := &app{open: open}

	cmd := &cobra.Command{
		Use:   "parlctl",
		Short: "Query the legislative accountability graph",
		Long: `parlctl runs parlgraph queries and prints the result as JSON.

By default it connects to Neo4j using the same configuration as the API
server (PARLGRAPH_CONFIG, .env and environment variables). With --nats it
sends the request to a running server over NATS instead.`,
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&a.opts.configPath, "config", "c", os.Getenv("PARLGRAPH_CONFIG"), "Config file path (YAML)")
	f.StringVar(&a.opts.natsURL, "nats", "", "Send requests to a server over NATS at this URL")
	f.StringVar(&a.opts.prefix, "subject-prefix", "parlgraph", "NATS subject prefix")
	f.DurationVar(&a.opts.timeout, "timeout", 30*time.Second, "Request timeout")
	f.BoolVar(&a.opts.pretty, "pretty", false, "Indent JSON output")

	cmd.AddCommand(
		scorecardCmd(a),
		legislatorsCmd(a),
		billsCmd(a),
		statementsCmd(a),
		threadCmd(a),
		lobbyingCmd(a),
		conflictsCmd(a),
		spendingCmd(a),
		committeeCmd(a),
		baselineCmd(a),
		partiesCmd(a),
		committeesCmd(a),
		statsCmd(a),
		watchCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "parlctl version %s\n", Version)
			},
		},
	)
	return cmd
}

// call runs op through the configured backend and prints the result.
func (a *app) call(cmd *cobra.Command, op string, req any) error {
	b, err := a.open(a.opts)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.timeout)
	defer cancel()

	data, err := b.Invoke(ctx, op, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if a.opts.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func openBackend(opts options) (backend, error) {
	if opts.natsURL != "" {
		nc, err := nats.Connect(opts.natsURL, nats.Name("parlctl"))
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		return &natsBackend{nc: nc, prefix: opts.prefix}, nil
	}
	l, err := openLocal(opts.configPath)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// --- NATS backend ---

type natsBackend struct {
	nc     *nats.Conn
	prefix string
}

func (n *natsBackend) Invoke(ctx context.Context, op string, req any) (json.RawMessage, error) {
	env, err := natsutil.Request[any, service.RawEnvelope](ctx, n.nc, n.prefix+"."+op, req)
	if err != nil {
		return nil, err
	}
	if env.Error != nil {
		return nil, env.Error
	}
	return env.Data, nil
}

func (n *natsBackend) Close() error {
	n.nc.Close()
	return nil
}

// --- Direct backend ---

type localBackend struct {
	svc    *service.Service
	driver neo4j.DriverWithContext
	index  *semantic.StatementIndex
}

func openLocal(configPath string) (*localBackend, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	l := &localBackend{driver: driver}

	opts := service.Options{
		QuestionPeriodMarker: cfg.Engine.QuestionPeriodMarker,
		Workers:              cfg.Engine.Workers,
		Timeout:              cfg.Engine.QueryTimeout,
		Logger:               slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
	if cfg.SemanticEnabled() {
		if l.index, err = semantic.New(cfg.Qdrant.URL, cfg.Qdrant.Collection); err != nil {
			l.Close()
			return nil, fmt.Errorf("qdrant connect: %w", err)
		}
		opts.Index = l.index
		opts.Embedder = ollama.New(cfg.Ollama.URL, cfg.Ollama.Model)
	}

	store := graph.New(driver, cfg.Neo4j.Database, graph.WithFullTextIndex(cfg.Neo4j.FullTextIndex))
	l.svc = service.New(store, opts)
	return l, nil
}

func (l *localBackend) Invoke(ctx context.Context, op string, req any) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	v, err := l.svc.Invoke(ctx, op, body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (l *localBackend) Close() error {
	if l.index != nil {
		l.index.Close()
	}
	return l.driver.Close(context.Background())
}
