package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medhold/dispute-cli/internal/model"
)

// BatchItem pairs one document with its analysis outcome. Exactly one of
// Report and Err is set.
type BatchItem struct {
	DocumentID string
	Report     *model.AnalysisReport
	Err        error
}

// AnalyzeBatch analyzes documents concurrently, bounded by the configured
// limit. Items come back in input order. A failing document is recorded in
// its item and does not abort the batch; the returned error is non-nil only
// when the context was cancelled before every document finished.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, docs []model.Document) ([]BatchItem, error) {
	items := make([]BatchItem, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			report, err := a.Analyze(gctx, doc)
			if err != nil {
				zap.L().Error("pipeline: document failed",
					zap.String("document", doc.ID),
					zap.Error(err),
				)
				items[i] = BatchItem{DocumentID: doc.ID, Err: err}
				return nil // don't abort batch on individual failure
			}
			items[i] = BatchItem{DocumentID: doc.ID, Report: report}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return items, eris.Wrap(err, "pipeline: batch aborted")
	}

	zap.L().Info("pipeline: batch complete",
		zap.Int("documents", len(docs)),
		zap.Int("failed", countFailed(items)),
	)
	return items, nil
}

func countFailed(items []BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
