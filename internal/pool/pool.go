// Package pool runs compile work on a fixed set of workers until the work
// tree is exhausted.
//
// Workers poll a shared queue. A worker that finds the queue empty marks
// itself waiting; once every worker is waiting and no work is pending, Quit
// tokens are broadcast. A worker holding a Quit token marks itself quitting
// and spins until either every worker quits (the run is over) or new work
// shows up (it returns to polling).
package pool

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/qlc/internal/diag"
)

// Kind distinguishes the two work variants.
type Kind int

const (
	// Dir is expanded into its subdirectories and GraphQL files.
	Dir Kind = iota
	// File is compiled.
	File
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Work is one unit of work.
type Work struct {
	Kind Kind
	Path string
}

// Outcome is what processing a Work produced.
type Outcome struct {
	// Children are queued for processing.
	Children    []Work
	Diagnostics diag.List
	// Globals are the names of enums and input objects referenced by the
	// compiled file.
	Globals []string
}

// Processor handles a single work item. It is called concurrently.
type Processor interface {
	Process(ctx context.Context, w Work) Outcome
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, w Work) Outcome

func (f ProcessorFunc) Process(ctx context.Context, w Work) Outcome { return f(ctx, w) }

// Result is the merged output of every worker.
type Result struct {
	Diagnostics diag.List
	// Globals is sorted and free of duplicates.
	Globals   []string
	Processed int
}

const (
	idleSleep = 500 * time.Microsecond
	spinSleep = 100 * time.Microsecond
)

type item struct {
	work Work
	quit bool
}

// queue is an unbounded multi-producer, multi-consumer FIFO.
type queue struct {
	mu    sync.Mutex
	items []item
}

func (q *queue) push(items ...item) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// tryPop never blocks.
func (q *queue) tryPop() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item{}, false
	}
	it := q.items[0]
	q.items[0] = item{}
	q.items = q.items[1:]
	return it, true
}

type coordinator struct {
	proc    Processor
	threads int32
	queue   queue

	// pending counts queued and in-flight work. Children are queued before
	// their parent is released, so it only reaches zero when the tree is
	// exhausted.
	pending     atomic.Int64
	numWaiting  atomic.Int32
	numQuitting atomic.Int32
}

// Run processes initial and everything it expands into on threads workers.
// Values below one mean one worker. The returned error is only set when ctx
// was cancelled before the work ran out.
func Run(ctx context.Context, p Processor, threads int, initial ...Work) (*Result, error) {
	if threads < 1 {
		threads = 1
	}
	c := &coordinator{proc: p, threads: int32(threads)}
	c.enqueue(initial)

	workers := make([]*worker, threads)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		w := &worker{c: c, globals: map[string]struct{}{}}
		workers[i] = w
		g.Go(func() error { return w.run(gctx) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merge(workers), nil
}

func (c *coordinator) enqueue(works []Work) {
	if len(works) == 0 {
		return
	}
	c.pending.Add(int64(len(works)))
	items := make([]item, len(works))
	for i, w := range works {
		items[i] = item{work: w}
	}
	c.queue.push(items...)
}

func (c *coordinator) broadcastQuit() {
	items := make([]item, c.threads)
	for i := range items {
		items[i] = item{quit: true}
	}
	c.queue.push(items...)
}

func (c *coordinator) quiescent() bool {
	return c.numWaiting.Load() == c.threads && c.pending.Load() == 0
}

// worker owns a private accumulator that is merged after the join.
type worker struct {
	c        *coordinator
	waiting  bool
	quitting bool

	diags     diag.List
	globals   map[string]struct{}
	processed int
}

func (w *worker) setWaiting(v bool) {
	if w.waiting == v {
		return
	}
	w.waiting = v
	if v {
		w.c.numWaiting.Add(1)
	} else {
		w.c.numWaiting.Add(-1)
	}
}

func (w *worker) setQuitting(v bool) {
	if w.quitting == v {
		return
	}
	w.quitting = v
	if v {
		w.c.numQuitting.Add(1)
	} else {
		w.c.numQuitting.Add(-1)
	}
}

func (w *worker) run(ctx context.Context) error {
	c := w.c
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		it, ok := c.queue.tryPop()
		switch {
		case !ok:
			w.setWaiting(true)
			if c.quiescent() {
				c.broadcastQuit()
			} else {
				time.Sleep(idleSleep)
			}
		case it.quit:
			w.setWaiting(true)
			w.setQuitting(true)
			done, err := w.spin(ctx)
			if done || err != nil {
				return err
			}
		default:
			w.setQuitting(false)
			w.setWaiting(false)
			w.process(ctx, it.work)
		}
	}
}

// spin holds a quitting worker until all workers quit or work reappears.
func (w *worker) spin(ctx context.Context) (done bool, err error) {
	c := w.c
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if c.numQuitting.Load() == c.threads {
			return true, nil
		}
		if c.numWaiting.Load() < c.threads || c.pending.Load() > 0 {
			w.setQuitting(false)
			return false, nil
		}
		runtime.Gosched()
		time.Sleep(spinSleep)
	}
}

func (w *worker) process(ctx context.Context, work Work) {
	out := w.c.proc.Process(ctx, work)
	w.c.enqueue(out.Children)
	w.diags = append(w.diags, out.Diagnostics...)
	for _, name := range out.Globals {
		w.globals[name] = struct{}{}
	}
	w.processed++
	w.c.pending.Add(-1)
}

func merge(workers []*worker) *Result {
	res := &Result{}
	seen := map[string]struct{}{}
	for _, w := range workers {
		res.Diagnostics = append(res.Diagnostics, w.diags...)
		res.Processed += w.processed
		for name := range w.globals {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				res.Globals = append(res.Globals, name)
			}
		}
	}
	slices.Sort(res.Globals)
	res.Diagnostics.Sort()
	return res
}
