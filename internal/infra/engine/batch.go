package engine

import (
	"context"
	"sync"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// ComputeBatch scores many actors concurrently: the actor list is split into
// chunks and fanned out to a bounded worker pool. The shared globals are
// built once up front so workers only pay the per-actor cost.
//
// Unknown actors get their sentinel result like in Compute; one bad actor
// never fails the batch. Context cancellation stops dispatch and returns
// what has been computed so far.
func (e *Engine) ComputeBatch(ctx context.Context, actors []string) map[string]domain.ReputationResult {
	results := make(map[string]domain.ReputationResult, len(actors))
	if len(actors) == 0 {
		return results
	}
	if e.metrics != nil {
		e.metrics.BatchSize.Observe(float64(len(actors)))
	}

	// Warm the globals cache before fanning out.
	if e.graph.NodeCount() > 0 {
		e.buildGlobals(e.graph.Epoch())
	}

	chunkSize := e.cfg.BatchChunk
	if chunkSize <= 0 {
		chunkSize = 100
	}
	workers := e.cfg.BatchWorkers
	if workers <= 0 {
		workers = 4
	}

	chunks := make(chan []string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunks {
				for _, actor := range chunk {
					r := e.computeSafe(ctx, actor)
					mu.Lock()
					results[actor] = r
					mu.Unlock()
				}
			}
		}()
	}

dispatch:
	for start := 0; start < len(actors); start += chunkSize {
		end := start + chunkSize
		if end > len(actors) {
			end = len(actors)
		}
		select {
		case chunks <- actors[start:end]:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(chunks)
	wg.Wait()
	return results
}

// computeSafe confines a per-actor panic to that actor's slot in the batch:
// the recovering worker records the sentinel and moves on.
func (e *Engine) computeSafe(ctx context.Context, actor string) (r domain.ReputationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r = e.sentinel(actor)
		}
	}()
	return e.Compute(ctx, actor)
}
