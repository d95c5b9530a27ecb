package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DachengChen/paiChat/ai"
	"github.com/DachengChen/paiChat/applog"
	"github.com/DachengChen/paiChat/config"
	"github.com/DachengChen/paiChat/db"
	"github.com/DachengChen/paiChat/session"
	"github.com/DachengChen/paiChat/tui"
	"github.com/DachengChen/paiChat/workflow"
)

// app holds the assembled components shared by all commands.
type app struct {
	log      *slog.Logger
	db       *db.DB
	schema   *db.SchemaCatalog
	provider ai.Provider
	sessions *session.Manager
}

// bootstrap loads configuration, connects to the warehouse, refreshes
// the schema catalog, and assembles the pipeline. quiet suppresses
// terminal log output (the TUI owns the screen).
func bootstrap(ctx context.Context, quiet bool) (*app, error) {
	logger := applog.New(applog.Options{Quiet: quiet})

	dbCfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(appCfg.AI)
	if err != nil {
		return nil, err
	}
	logger.Info("using AI provider", "provider", provider.Name())

	conn, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("warehouse connection failed: %w", err)
	}

	schema := db.NewSchemaCatalog(conn, appCfg.Schema)
	if err := schema.Refresh(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema introspection failed: %w", err)
	}

	pipeline, err := workflow.New(workflow.Config{
		LLM:     provider,
		Querier: conn,
		Schema:  schema,
		Logger:  logger,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &app{
		log:      logger,
		db:       conn,
		schema:   schema,
		provider: provider,
		sessions: session.NewManager(pipeline, logger),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func (a *app) StartTUI() error {
	return tui.Start(a.sessions, a.provider.Name())
}
