package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roleplayhq/reports-mcp/internal/adapter/mcp"
	"github.com/roleplayhq/reports-mcp/internal/adapter/postgres"
	"github.com/roleplayhq/reports-mcp/internal/adapter/postgrest"
	"github.com/roleplayhq/reports-mcp/internal/audit"
	"github.com/roleplayhq/reports-mcp/internal/config"
	"github.com/roleplayhq/reports-mcp/internal/core/domain"
	"github.com/roleplayhq/reports-mcp/internal/core/port"
	"github.com/roleplayhq/reports-mcp/internal/core/service"
	"github.com/roleplayhq/reports-mcp/internal/dictionary"
	"github.com/roleplayhq/reports-mcp/internal/telemetry"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	overrides, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr; stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting reports-mcp",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("executor", cfg.Executor),
		slog.String("view_name", cfg.ViewName),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
		slog.String("transport", cfg.Transport),
		slog.Bool("strict_validation", cfg.StrictValidation),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Observability.
	tracer := telemetry.NoopTracer()
	instruments := telemetry.NoopInstruments()
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, "roleplay-reports", version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
		tracer = telemetry.Tracer()
		instruments = telemetry.NewInstruments()
		logger.Info("telemetry enabled")
	}

	// Audit log (optional).
	var auditor port.QueryAuditor = audit.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = fa.Close() }()
		auditor = fa
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}

	// Query backend.
	var executor port.QueryExecutor
	switch cfg.Executor {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		executor = postgres.NewExecutor(pool, cfg.QueryTimeout)
		logger.Info("database pool connected",
			slog.String("db.system", "postgresql"),
			slog.String("dsn", redactDSN(cfg.DatabaseURL)),
		)
	case "postgrest":
		executor = postgrest.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.QueryTimeout)
		logger.Info("postgrest client configured", slog.String("supabase_url", cfg.SupabaseURL))
	}

	// Query validation.
	var validator port.QueryValidator = domain.NewLexicalValidator()
	if cfg.StrictValidation {
		validator = domain.NewStrictValidator()
	}

	// Column dictionary.
	dict := dictionary.Default()
	if cfg.DictionaryFile != "" {
		dict, err = dictionary.LoadFromFile(cfg.DictionaryFile)
		if err != nil {
			return fmt.Errorf("loading dictionary: %w", err)
		}
		logger.Info("column dictionary loaded",
			slog.String("file", cfg.DictionaryFile),
			slog.Int("columns", len(dict.Columns)),
		)
	}

	// Services.
	querySvc := service.NewQueryService(validator, executor, auditor, logger, tracer, instruments)
	schemaSvc := service.NewSchemaService(querySvc, cfg.ViewName, dict, logger)

	if cfg.DryRun {
		res, err := querySvc.Execute(service.WithToolName(ctx, "dry-run"), "SELECT 1", 1)
		if err != nil {
			return fmt.Errorf("dry run: %w", err)
		}
		logger.Info("dry run succeeded",
			slog.Int("rows", len(res.Rows)),
			slog.Int64("duration_ms", res.DurationMS),
		)
		return nil
	}

	// MCP server with tool handlers.
	mcpServer := mcp.NewServer(version, schemaSvc, querySvc, cfg.ViewName, logger, tracer, instruments)

	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, cfg, mcpServer, logger)
	default:
		return serveStdio(ctx, mcpServer, logger)
	}
}

func serveStdio(ctx context.Context, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio")
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/mcp", bearerAuthMiddleware(streamable, cfg.HTTPBearerToken))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           recoveryMiddleware(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("serving MCP over http", slog.String("addr", cfg.HTTPAddr))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	<-errCh

	logger.Info("shutdown complete")
	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// recoveryMiddleware converts handler panics into 500 responses instead of
// killing the connection.
func recoveryMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in http handler",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// parseFlags parses CLI flags into config.Overrides. Only flags the user
// actually set become overrides; everything else stays nil so env vars and
// defaults apply.
func parseFlags(args []string) (config.Overrides, error) {
	fs := flag.NewFlagSet("reports-mcp", flag.ContinueOnError)

	executor := fs.String("executor", "", `query backend: "postgrest" or "postgres"`)
	supabaseURL := fs.String("supabase-url", "", "Supabase project URL")
	supabaseKey := fs.String("supabase-key", "", "Supabase anon key")
	databaseURL := fs.String("database-url", "", "PostgreSQL connection string")
	viewName := fs.String("view-name", "", "reports view to expose")
	queryTimeout := fs.Duration("query-timeout", 0, "per-query timeout (e.g. 10s)")
	dictionaryFile := fs.String("dictionary-file", "", "path to a column dictionary YAML file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	transport := fs.String("transport", "", `transport: "stdio" or "http"`)
	httpAddr := fs.String("http-addr", "", "HTTP listen address")
	httpBearerToken := fs.String("http-bearer-token", "", "bearer token for the HTTP transport")
	poolMaxConns := fs.Int("pool-max-conns", 0, "connection pool max connections")
	poolMinConns := fs.Int("pool-min-conns", 0, "connection pool min connections")
	poolMaxConnLifetime := fs.Duration("pool-max-conn-lifetime", 0, "connection pool max connection lifetime")
	strictValidation := fs.Bool("strict-validation", false, "parse queries with pg_query instead of keyword scanning")
	otelEnabled := fs.Bool("otel", false, "enable OpenTelemetry tracing and metrics")
	dryRun := fs.Bool("dry-run", false, "validate config and backend connectivity, then exit")
	auditLog := fs.String("audit-log", "", "path to NDJSON audit log file")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "executor":
			o.Executor = executor
		case "supabase-url":
			o.SupabaseURL = supabaseURL
		case "supabase-key":
			o.SupabaseKey = supabaseKey
		case "database-url":
			o.DatabaseURL = databaseURL
		case "view-name":
			o.ViewName = viewName
		case "query-timeout":
			o.QueryTimeout = queryTimeout
		case "dictionary-file":
			o.DictionaryFile = dictionaryFile
		case "log-level":
			o.LogLevel = logLevel
		case "transport":
			o.Transport = transport
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = httpBearerToken
		case "pool-max-conns":
			v := int32(*poolMaxConns)
			o.PoolMaxConns = &v
		case "pool-min-conns":
			v := int32(*poolMinConns)
			o.PoolMinConns = &v
		case "pool-max-conn-lifetime":
			o.PoolMaxConnLifetime = poolMaxConnLifetime
		}
	})

	o.StrictValidation = *strictValidation
	o.OTelEnabled = *otelEnabled
	o.DryRun = *dryRun
	o.AuditLog = *auditLog

	return o, nil
}

// redactDSN masks the password in a connection string for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
