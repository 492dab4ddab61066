// Package pipeline orchestrates the analysis of a response letter: statement
// extraction, pattern matching, finding aggregation, merit scoring,
// recommendations, and the legal-reference lookup.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/aggregate"
	"github.com/medhold/dispute-cli/internal/extract"
	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/legalref"
	"github.com/medhold/dispute-cli/internal/match"
	"github.com/medhold/dispute-cli/internal/merit"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/patterns"
	"github.com/medhold/dispute-cli/internal/recommend"
	"github.com/medhold/dispute-cli/internal/resilience"
)

// DefaultConcurrency bounds AnalyzeBatch fan-out when no limit is configured.
const DefaultConcurrency = 4

// Options configures an Analyzer. The zero value is usable: no reference
// lookup, default matcher budget, default batch concurrency.
type Options struct {
	// References resolves finding types to provisions and precedents.
	// Nil disables the reference phase.
	References legalref.Lookup

	// MatchBudget bounds a single matcher attempt. Zero keeps the
	// matcher default.
	MatchBudget time.Duration

	// Concurrency limits AnalyzeBatch fan-out. Zero means
	// DefaultConcurrency.
	Concurrency int
}

// Analyzer runs the full analysis for one document. It holds no per-request
// state and is safe for concurrent use; the learning store is the only
// shared mutable dependency and is read-only here.
type Analyzer struct {
	lib         *patterns.Library
	extractor   *extract.Extractor
	matcher     *match.Matcher
	scorer      *merit.Scorer
	refs        legalref.Lookup
	breaker     *resilience.CircuitBreaker
	concurrency int
}

// New wires an Analyzer over the given pattern library and learning store.
func New(lib *patterns.Library, store learning.Store, opts Options) *Analyzer {
	var matchOpts []match.Option
	if opts.MatchBudget > 0 {
		matchOpts = append(matchOpts, match.WithBudget(opts.MatchBudget))
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Analyzer{
		lib:         lib,
		extractor:   extract.New(lib),
		matcher:     match.New(lib, matchOpts...),
		scorer:      merit.New(store),
		refs:        opts.References,
		breaker:     resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
		concurrency: concurrency,
	}
}

// Analyze runs every phase against one document and returns the report.
// Extraction and scoring failures abort the analysis; a matcher budget
// overrun or a reference-lookup failure degrades the report with a warning
// instead.
func (a *Analyzer) Analyze(ctx context.Context, doc model.Document) (*model.AnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "pipeline: analyze %s", doc.ID)
	}

	log := zap.L().With(zap.String("document", doc.ID))
	start := time.Now()
	report := &model.AnalysisReport{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		CreatedAt:  start.UTC(),
	}

	trackPhase := func(name string, fn func() (map[string]any, error)) error {
		phaseStart := time.Now()
		meta, err := fn()
		duration := time.Since(phaseStart).Milliseconds()

		pr := model.PhaseResult{Name: name, Duration: duration, Metadata: meta}
		if err != nil {
			pr.Error = err.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(err),
			)
		} else {
			log.Debug("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}
		report.Phases = append(report.Phases, pr)
		return err
	}

	var statements []model.Statement
	if err := trackPhase("extract", func() (map[string]any, error) {
		sts, err := a.extractor.Extract(doc.Text)
		if err != nil {
			return nil, err
		}
		statements = sts
		return map[string]any{"statements": len(sts)}, nil
	}); err != nil {
		return nil, eris.Wrapf(err, "pipeline: analyze %s", doc.ID)
	}
	report.Statements = len(statements)

	var matched match.Result
	_ = trackPhase("match", func() (map[string]any, error) {
		matched = a.matcher.Match(statements)
		return map[string]any{
			"matches":  len(matched.Matches),
			"warnings": len(matched.Warnings),
		}, nil
	})
	report.Warnings = append(report.Warnings, matched.Warnings...)

	_ = trackPhase("aggregate", func() (map[string]any, error) {
		report.Findings = aggregate.Findings(matched.Matches, a.lib)
		return map[string]any{"findings": len(report.Findings)}, nil
	})

	if err := trackPhase("merit", func() (map[string]any, error) {
		assessment, err := a.scorer.Score(ctx, model.ContradictionTypes(report.Findings))
		if err != nil {
			return nil, err
		}
		report.Merit = assessment
		return map[string]any{
			"merit":           string(assessment.Merit),
			"win_probability": assessment.WinProbability,
			"sample_size":     assessment.SampleSize,
		}, nil
	}); err != nil {
		return nil, eris.Wrapf(err, "pipeline: analyze %s", doc.ID)
	}

	_ = trackPhase("recommend", func() (map[string]any, error) {
		report.Recommendations = recommend.Build(report.Findings, *report.Merit)
		return map[string]any{"recommendations": len(report.Recommendations)}, nil
	})

	a.lookupReferences(ctx, report, trackPhase)

	report.DurationMS = time.Since(start).Milliseconds()
	log.Info("pipeline: analysis complete",
		zap.String("report_id", report.ID),
		zap.Int("statements", report.Statements),
		zap.Int("findings", len(report.Findings)),
		zap.String("merit", string(report.Merit.Merit)),
		zap.Int64("duration_ms", report.DurationMS),
	)
	return report, nil
}

// lookupReferences resolves provisions and precedents for the report's
// finding types. The lookup runs behind a circuit breaker; any failure,
// including an open circuit, degrades to a report warning.
func (a *Analyzer) lookupReferences(ctx context.Context, report *model.AnalysisReport, trackPhase func(string, func() (map[string]any, error)) error) {
	if a.refs == nil || len(report.Findings) == 0 {
		return
	}

	types := distinctTypes(report.Findings)
	var refs []model.LegalReference
	err := trackPhase("references", func() (map[string]any, error) {
		r, err := resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) ([]model.LegalReference, error) {
			return a.refs.Lookup(ctx, types)
		})
		if err != nil {
			return nil, err
		}
		refs = r
		return map[string]any{"references": len(r)}, nil
	})
	if err != nil {
		report.Warnings = append(report.Warnings, model.AnalysisWarning{
			Code:    model.WarnReferenceLookup,
			Message: err.Error(),
		})
		return
	}
	report.References = refs
}

// distinctTypes returns each finding type once, in finding order. Findings
// arrive sorted by confidence, so references follow the report's own
// ordering.
func distinctTypes(findings []model.Finding) []string {
	seen := make(map[string]bool, len(findings))
	var types []string
	for _, f := range findings {
		if seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		types = append(types, f.Type)
	}
	return types
}
