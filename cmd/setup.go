package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/fetcher"
	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/legalref"
	"github.com/medhold/dispute-cli/internal/patterns"
	"github.com/medhold/dispute-cli/internal/pipeline"
	sfpkg "github.com/medhold/dispute-cli/pkg/salesforce"
)

// initStore opens the configured learning store and applies migrations.
// Callers should defer Close.
func initStore(ctx context.Context) (learning.Store, error) {
	var (
		st  learning.Store
		err error
	)
	switch cfg.Store.Backend {
	case "sqlite":
		st, err = learning.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = learning.NewPostgres(ctx, cfg.Store.DatabaseURL, &learning.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "memory":
		st = learning.NewMemory()
	default:
		return nil, eris.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadLibrary returns the configured pattern catalog: a YAML file when
// patterns.file is set, the built-in catalog otherwise.
func loadLibrary() (*patterns.Library, error) {
	if cfg.Patterns.File != "" {
		return patterns.LoadFile(cfg.Patterns.File)
	}
	return patterns.Builtin()
}

// buildAnalyzer wires the full analysis pipeline over the given store, with
// the built-in reference catalog behind the configured cache.
func buildAnalyzer(store learning.Store) (*pipeline.Analyzer, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, err
	}

	var refs legalref.Lookup = legalref.Builtin()
	if cfg.LegalRef.PerSecond > 0 {
		refs = legalref.NewRateLimited(refs, cfg.LegalRef.PerSecond, 1)
	}
	if ttl := cfg.LegalRef.CacheTTLMinutes; ttl > 0 {
		refs = legalref.NewCached(refs, time.Duration(ttl)*time.Minute, 10*time.Minute)
	}

	return pipeline.New(lib, store, pipeline.Options{
		References:  refs,
		MatchBudget: time.Duration(cfg.Match.BudgetMS) * time.Millisecond,
		Concurrency: cfg.Batch.Concurrency,
	}), nil
}

// newResolver builds the letter fetcher from the fetch config.
func newResolver() *fetcher.Resolver {
	return fetcher.NewResolver(fetcher.Options{
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		PerSecond:  cfg.Fetch.PerSecond,
	})
}

// initSalesforce authenticates against the configured org with the JWT
// bearer flow.
func initSalesforce() (sfpkg.Client, error) {
	if err := cfg.Validate("salesforce"); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
