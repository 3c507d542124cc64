package pipeline

import (
	"context"

	id "solvecheck/internal/utils/id"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel runs when the caller passes zero.
const DefaultBatchConcurrency = 4

// RunBatch answers every question with an independent run. Runs execute in
// parallel up to concurrency; results keep the order of questions. The first
// failure cancels the remaining runs and is returned.
func (p *Pipeline) RunBatch(ctx context.Context, questions []string, concurrency int) ([]*Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	results := make([]*Result, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, question := range questions {
		i, question := i, question
		g.Go(func() error {
			result, err := p.Run(id.WithRunID(gctx, id.NewRunID()), question)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
