package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

// WarmupReport summarizes a Warmup run.
type WarmupReport struct {
	Documents int `json:"documents"`
	Failed    int `json:"failed"`
}

// Warmup parses every stored document and makes sure its search index is
// current, rebuilding stale ones on a bounded worker pool. Per-document
// failures are logged and counted; only listing errors abort the run.
func (c *Catalog) Warmup(ctx context.Context) (rep WarmupReport, err error) {
	ctx, span := startSpan(ctx, "Warmup")
	defer func() { endSpan(span, err) }()

	ids, err := c.Store.List(ctx)
	if err != nil {
		return rep, err
	}
	pool, err := ants.NewPool(c.opts.WarmupWorkers)
	if err != nil {
		return rep, err
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if _, _, err := c.Index(ctx, id); err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("document_id", id).Msg("warmup failed")
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			failed.Add(1)
			log.Warn().Err(err).Str("document_id", id).Msg("warmup not scheduled")
		}
	}
	wg.Wait()

	rep = WarmupReport{Documents: len(ids), Failed: int(failed.Load())}
	log.Info().Int("documents", rep.Documents).Int("failed", rep.Failed).Msg("warmup finished")
	return rep, ctx.Err()
}
