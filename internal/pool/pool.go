// Package pool implements the search thread pool: a fixed set of
// persistent worker goroutines that run independent searches of the
// same root position concurrently, sharing a transposition table (each
// worker keeps its own history), grounded on original_source/src/rose/search.cpp's
// Search::threadMain (the idle/started barrier pair and the
// shared_lock a worker holds while searching) and spec §5.
package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/engine"
	"github.com/kestrelchess/rosecore/internal/game"
)

// Result is one worker's finished search, reported back to Pool.Go's
// caller so it can pick the most trustworthy line (the deepest
// completed iteration, breaking ties by score).
type Result struct {
	WorkerID int
	Move     board.Move
	Depth    engine.Depth
	Score    int
	Nodes    uint64
}

type worker struct {
	id     int
	search *engine.Search
}

// Pool runs n persistent worker goroutines. A search round is started
// by Go: the pool-owning goroutine and every worker rendezvous on
// idle, each worker then takes a read lock and announces it has
// started, and Go waits for every worker's result before returning.
// Go takes the exclusive side of mu to publish the round's game and
// control, so it never races a worker mid-search.
type Pool struct {
	mu      sync.RWMutex
	idle    *cyclicBarrier
	started *cyclicBarrier
	stop    atomic.Bool
	sem     *semaphore.Weighted

	workers []*worker
	eg      *errgroup.Group
	egCtx   context.Context

	roundGame    *game.Game
	roundControl engine.SearchControl
	results      chan Result
}

// New builds a pool of n workers, each with its own Search sharing tt
// and eval. maxConcurrent bounds how many workers may be actively
// searching at once, independent of n, for running an oversubscribed
// worker count on fewer physical cores without starving other
// process work entirely.
func New(n int, tt *engine.Table, eval engine.Evaluator, output engine.EngineOutput, maxConcurrent int) *Pool {
	if maxConcurrent <= 0 || maxConcurrent > n {
		maxConcurrent = n
	}
	p := &Pool{
		idle:    newCyclicBarrier(n + 1),
		started: newCyclicBarrier(n + 1),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
	for i := 0; i < n; i++ {
		p.workers = append(p.workers, &worker{
			id:     i,
			search: engine.NewSearch(game.New(), tt, eval, output),
		})
	}
	return p
}

// Start launches the n worker goroutines. They idle until the first
// call to Go, and run until Stop.
func (p *Pool) Start() {
	eg, ctx := errgroup.WithContext(context.Background())
	p.eg = eg
	p.egCtx = ctx
	for _, w := range p.workers {
		w := w
		eg.Go(func() error {
			return p.workerLoop(w)
		})
	}
}

func (p *Pool) workerLoop(w *worker) error {
	for {
		p.idle.Wait()
		if p.stop.Load() {
			return nil
		}

		p.mu.RLock()
		w.search.SetGame(p.roundGame.Clone())
		control := p.roundControl
		p.started.Arrive()

		var move board.Move
		var info engine.SearchInfo
		if err := p.sem.Acquire(p.egCtx, 1); err == nil {
			move = w.search.Run(control)
			info = w.search.LastInfo()
			p.sem.Release(1)
		}
		p.mu.RUnlock()

		if p.results != nil {
			p.results <- Result{WorkerID: w.id, Move: move, Depth: info.Depth, Score: info.Score, Nodes: info.Nodes}
		}
	}
}

// Go runs one search round: every worker searches a clone of g under
// control, and Go blocks until all of them have returned, then
// returns every worker's result for the caller to pick from (the spec
// leaves "pick the best worker's line" to the caller rather than
// baking a single policy into the pool).
func (p *Pool) Go(g *game.Game, control engine.SearchControl) []Result {
	p.mu.Lock()
	p.roundGame = g
	p.roundControl = control
	p.results = make(chan Result, len(p.workers))
	p.mu.Unlock()

	p.idle.Wait()
	p.started.Wait()

	results := make([]Result, 0, len(p.workers))
	for range p.workers {
		results = append(results, <-p.results)
	}
	return results
}

// Stop signals every worker to exit its loop and waits for them to
// finish, releasing the idle barrier one final time so blocked
// workers wake up and observe the stop flag.
func (p *Pool) Stop() {
	p.stop.Store(true)
	p.idle.Wait()
	if p.eg != nil {
		p.eg.Wait()
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }
