// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import (
	"context"
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
	"go.uber.org/zap"
)

// How many nodes evalSpan processes between context checks.
const ctxCheckInterval = 256

// node is one range of the split tree.  Children are -1 for the
// single-element ranges at the bottom.
type node struct {
	a, b        int64
	left, right int
}

func (n *node) leaf() bool { return n.left < 0 }

// graph is the split tree of [a, b) laid out in pre-order.  Every
// subtree occupies a contiguous span of indices beginning at its root,
// and children always follow their parent, so walking a span backwards
// visits both children of a node before the node itself.
type graph struct {
	nodes   []node
	results []SplitResult
}

// maxTerms bounds the ranges a graph is built for, keeping 2*terms
// nodes addressable by int on every platform.
const maxTerms = math.MaxInt32 / 2

// checkSize reports ranges too large to lay out as ErrResourceLimit.
func checkSize(a, b int64) error {
	if b-a > maxTerms {
		return fmt.Errorf("%w: %d terms, at most %d", ErrResourceLimit, b-a, int64(maxTerms))
	}
	return nil
}

// spanLen is the number of nodes in the split tree of [a, b).
func spanLen(a, b int64) int {
	return int(2*(b-a) - 1)
}

func newGraph(a, b int64) *graph {
	n := spanLen(a, b)
	g := &graph{
		nodes:   make([]node, 0, n),
		results: make([]SplitResult, n),
	}
	type pending struct{ a, b int64 }
	stack := []pending{{a, b}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx := len(g.nodes)
		nd := node{a: r.a, b: r.b, left: -1, right: -1}
		if r.b-r.a > 1 {
			m := (r.a + r.b) / 2
			nd.left = idx + 1
			nd.right = idx + 1 + spanLen(r.a, m)
			// Right is pushed first so the left subtree is laid out next.
			stack = append(stack, pending{m, r.b}, pending{r.a, m})
		}
		g.nodes = append(g.nodes, nd)
	}
	return g
}

func (g *graph) result(idx int) SplitResult {
	return g.results[idx]
}

// eval computes node idx, whose children must already be done.  The
// children's terms are dropped once folded in.
func (g *graph) eval(idx int) {
	nd := &g.nodes[idx]
	if nd.leaf() {
		g.results[idx] = Base(nd.a)
		return
	}
	g.results[idx] = Merge(g.results[nd.left], g.results[nd.right])
	g.results[nd.left] = SplitResult{}
	g.results[nd.right] = SplitResult{}
}

// evalSpan evaluates the whole subtree rooted at idx on the calling
// goroutine.
func (g *graph) evalSpan(idx int) {
	nd := g.nodes[idx]
	for j := idx + spanLen(nd.a, nd.b) - 1; j >= idx; j-- {
		g.eval(j)
	}
}

func (g *graph) evalSpanCtx(ctx context.Context, idx int) error {
	nd := g.nodes[idx]
	for j, n := idx+spanLen(nd.a, nd.b)-1, 0; j >= idx; j, n = j-1, n+1 {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		g.eval(j)
	}
	return nil
}

// plan partitions the tree into the subtrees that are evaluated
// sequentially (ranges of at most threshold elements, or leaves) and the
// merge nodes above them, grouped by depth.
func (g *graph) plan(threshold int64) (frontier []int, levels [][]int) {
	type pending struct{ idx, depth int }
	stack := []pending{{0, 0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &g.nodes[p.idx]
		if nd.leaf() || nd.b-nd.a <= threshold {
			frontier = append(frontier, p.idx)
			continue
		}
		for len(levels) <= p.depth {
			levels = append(levels, nil)
		}
		levels[p.depth] = append(levels[p.depth], p.idx)
		stack = append(stack, pending{nd.right, p.depth + 1}, pending{nd.left, p.depth + 1})
	}
	return frontier, levels
}

// evalParallel forks the independent subtrees across workers and joins
// them level by level up to the root.
func (g *graph) evalParallel(ctx context.Context, workers int, threshold int64) error {
	frontier, levels := g.plan(threshold)
	logger.Debug("split plan",
		zap.Int("nodes", len(g.nodes)),
		zap.Int("frontier", len(frontier)),
		zap.Int("levels", len(levels)),
	)

	// Each batch yields its first error, or nil; the reduction keeps the
	// leftmost one.
	res := parallel.RangeReduce(0, len(frontier), workers,
		func(low, high int) interface{} {
			for _, idx := range frontier[low:high] {
				if err := g.evalSpanCtx(ctx, idx); err != nil {
					return err
				}
			}
			return nil
		},
		func(x, y interface{}) interface{} {
			if x != nil {
				return x
			}
			return y
		})
	if err, _ := res.(error); err != nil {
		return err
	}

	for d := len(levels) - 1; d >= 0; d-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		level := levels[d]
		if len(level) == 1 {
			g.eval(level[0])
			continue
		}
		parallel.Range(0, len(level), workers, func(low, high int) {
			for _, idx := range level[low:high] {
				g.eval(idx)
			}
		})
	}
	return nil
}
