package pool_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/pool"
)

var threadCounts = []int{1, 2, 3, 4, 8, 16}

// tree expands "dir" paths into fanout subdirectories down to depth and a
// file per directory. Every file references a global derived from its depth.
type tree struct {
	fanout int
	depth  int
	delay  time.Duration

	mu   sync.Mutex
	seen map[string]int
}

func newTree(fanout, depth int) *tree {
	return &tree{fanout: fanout, depth: depth, seen: map[string]int{}}
}

func (tr *tree) Process(_ context.Context, w pool.Work) pool.Outcome {
	tr.mu.Lock()
	tr.seen[w.Path]++
	tr.mu.Unlock()
	if tr.delay > 0 {
		time.Sleep(tr.delay)
	}

	level := strings.Count(w.Path, "/")
	if w.Kind == pool.File {
		return pool.Outcome{
			Globals:     []string{fmt.Sprintf("G%d", level%3)},
			Diagnostics: diag.List{diag.Warningf("compiled").InFile(w.Path)},
		}
	}
	children := []pool.Work{{Kind: pool.File, Path: w.Path + "/f.graphql"}}
	if level < tr.depth {
		for i := 0; i < tr.fanout; i++ {
			children = append(children, pool.Work{Kind: pool.Dir, Path: fmt.Sprintf("%s/%d", w.Path, i)})
		}
	}
	return pool.Outcome{Children: children}
}

// expected counts the items a full expansion produces.
func (tr *tree) expected() int {
	dirs, level := 0, 1
	for i := 0; i < tr.depth+1; i++ {
		dirs += level
		level *= tr.fanout
	}
	return dirs * 2
}

func TestRunProcessesEveryItemOnce(t *testing.T) {
	for _, threads := range threadCounts {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			tr := newTree(3, 4)
			res, err := pool.Run(context.Background(), tr, threads, pool.Work{Kind: pool.Dir, Path: "root"})
			require.NoError(t, err)

			require.Equal(t, tr.expected(), res.Processed)
			require.Len(t, tr.seen, tr.expected())
			for path, n := range tr.seen {
				require.Equal(t, 1, n, path)
			}
			require.Equal(t, []string{"G0", "G1", "G2"}, res.Globals)
			require.Len(t, res.Diagnostics, tr.expected()/2)
		})
	}
}

func TestRunDeepChain(t *testing.T) {
	for _, threads := range threadCounts {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			tr := newTree(1, 300)
			res, err := pool.Run(context.Background(), tr, threads, pool.Work{Kind: pool.Dir, Path: "root"})
			require.NoError(t, err)
			require.Equal(t, tr.expected(), res.Processed)
		})
	}
}

// A single slow producer must keep idle workers from quitting.
func TestRunWaitsForSlowProducer(t *testing.T) {
	for _, threads := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			tr := newTree(1, 5)
			tr.delay = 5 * time.Millisecond
			res, err := pool.Run(context.Background(), tr, threads, pool.Work{Kind: pool.Dir, Path: "root"})
			require.NoError(t, err)
			require.Equal(t, tr.expected(), res.Processed)
		})
	}
}

func TestRunMultipleRoots(t *testing.T) {
	tr := newTree(2, 2)
	res, err := pool.Run(context.Background(), tr, 4,
		pool.Work{Kind: pool.Dir, Path: "a"},
		pool.Work{Kind: pool.Dir, Path: "b"},
		pool.Work{Kind: pool.File, Path: "c.graphql"},
	)
	require.NoError(t, err)
	require.Equal(t, 2*tr.expected()+1, res.Processed)
}

func TestRunNoWork(t *testing.T) {
	for _, threads := range threadCounts {
		res, err := pool.Run(context.Background(), newTree(1, 1), threads)
		require.NoError(t, err)
		require.Zero(t, res.Processed)
		require.Empty(t, res.Globals)
	}
}

func TestRunZeroThreadsUsesOne(t *testing.T) {
	tr := newTree(2, 2)
	res, err := pool.Run(context.Background(), tr, 0, pool.Work{Kind: pool.Dir, Path: "root"})
	require.NoError(t, err)
	require.Equal(t, tr.expected(), res.Processed)
}

func TestRunSortsDiagnostics(t *testing.T) {
	files := []pool.Work{
		{Kind: pool.File, Path: "c.graphql"},
		{Kind: pool.File, Path: "a.graphql"},
		{Kind: pool.File, Path: "b.graphql"},
	}
	p := pool.ProcessorFunc(func(_ context.Context, w pool.Work) pool.Outcome {
		return pool.Outcome{
			Diagnostics: diag.List{diag.Errorf("broken").InFile(w.Path)},
			Globals:     []string{"Shared", strings.TrimSuffix(w.Path, ".graphql")},
		}
	})
	res, err := pool.Run(context.Background(), p, 3, files...)
	require.NoError(t, err)

	var paths []string
	for _, d := range res.Diagnostics {
		paths = append(paths, d.File)
	}
	require.Equal(t, []string{"a.graphql", "b.graphql", "c.graphql"}, paths)
	require.Equal(t, []string{"Shared", "a", "b", "c"}, res.Globals)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count atomic.Int64
	endless := pool.ProcessorFunc(func(_ context.Context, w pool.Work) pool.Outcome {
		if count.Add(1) == 100 {
			cancel()
		}
		return pool.Outcome{Children: []pool.Work{{Kind: pool.Dir, Path: w.Path + "/x"}}}
	})
	_, err := pool.Run(ctx, endless, 4, pool.Work{Kind: pool.Dir, Path: "root"})
	require.ErrorIs(t, err, context.Canceled)
}
