package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/eldin/internal/adapters/driven/audit/jsonl"
	configfile "github.com/custodia-labs/eldin/internal/adapters/driven/config/file"
	"github.com/custodia-labs/eldin/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/eldin/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/core/services"
	"github.com/custodia-labs/eldin/internal/corpus"
	"github.com/custodia-labs/eldin/internal/index"
	"github.com/custodia-labs/eldin/internal/logger"
	"github.com/custodia-labs/eldin/internal/provider/licensefile"
	"github.com/custodia-labs/eldin/internal/provider/local"
)

// Config keys and defaults.
const (
	defaultProviderID = "analystco"
	defaultPortalBase = "https://portal.analystco.example.com"
	defaultHTTPAddr   = ":8080"
)

// app holds the wired service graph for one process.
type app struct {
	config   *configfile.ConfigStore
	gateway  *services.GatewayService
	guard    *licensefile.Guard
	sink     *jsonl.Sink
	store    driven.DocumentStore
	provider driven.DocumentProvider

	closers []func() error
}

// buildApp loads configuration and the document corpus, then wires the
// full pipeline: store, index, provider, license guard, audit sink and
// gateway. Also populates the package-level service vars used by the
// commands.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{config: cfg}

	// Corpus of markdown documents with frontmatter metadata.
	corpusDir := cfg.GetString("corpus.dir")
	if corpusDir == "" {
		corpusDir = filepath.Join(filepath.Dir(cfg.Path()), "corpus")
	}
	docs, err := corpus.LoadDir(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("loading corpus from %s: %w", corpusDir, err)
	}
	logger.Info("Loaded %d documents from %s", len(docs), corpusDir)

	// Document store: SQLite catalog by default, in-memory on request.
	switch backend := cfg.GetString("storage.backend"); backend {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
		if err != nil {
			return nil, fmt.Errorf("opening catalog store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	case "memory":
		a.store = memory.NewDocumentStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	for i := range docs {
		if err := a.store.SaveDocument(ctx, &docs[i]); err != nil {
			a.close()
			return nil, fmt.Errorf("saving document %s: %w", docs[i].ID, err)
		}
	}

	// Lexical index over the corpus.
	idx := index.Build(docs, index.Options{MinScore: cfg.GetFloat("index.min_score")})

	providerID := cfg.GetString("provider.id")
	if providerID == "" {
		providerID = defaultProviderID
	}
	portalBase := cfg.GetString("provider.portal_base")
	if portalBase == "" {
		portalBase = defaultPortalBase
	}
	a.provider = local.New(providerID, a.store, idx, portalBase)
	registry := services.NewProviderRegistry(map[string]driven.DocumentProvider{
		providerID: a.provider,
	})

	// License grants, hot-reloaded while serving.
	grantsPath := cfg.GetString("license.grants_file")
	if grantsPath == "" {
		grantsPath = filepath.Join(filepath.Dir(cfg.Path()), "grants.toml")
	}
	a.guard, err = licensefile.NewGuard(grantsPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("loading license grants: %w", err)
	}

	a.sink, err = jsonl.NewSink(cfg.GetString("audit.path"))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	a.closers = append(a.closers, a.sink.Close)

	a.gateway = services.NewGatewayService(a.guard, registry, a.sink, services.GatewayConfig{
		Provider:           providerID,
		MaxDocsConsidered:  cfg.GetInt("gateway.max_docs_considered"),
		MaxExcerpts:        cfg.GetInt("gateway.max_excerpts"),
		ExcerptMaxChars:    cfg.GetInt("gateway.excerpt_max_chars"),
		ExcerptTotalBudget: cfg.GetInt("gateway.excerpt_total_budget"),
		HeadingWeight:      cfg.GetFloat("gateway.heading_weight"),
		Deadline:           time.Duration(cfg.GetInt("gateway.deadline_ms")) * time.Millisecond,
		RetryAttempts:      cfg.GetInt("gateway.retry_attempts"),
		RetryBackoff:       time.Duration(cfg.GetInt("gateway.retry_backoff_ms")) * time.Millisecond,
	})

	askService = a.gateway
	adminService = services.NewAdminService(registry, a.store)
	docProvider = a.provider
	docStore = a.store

	return a, nil
}

// close releases everything buildApp opened, in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}
	a.closers = nil
}
