// Package dom computes dominator information over a control-flow graph:
// dominator sets, strict dominators, immediate dominators, the dominator
// tree, and dominance frontiers.
package dom

import (
	"sort"

	"github.com/birlc/birl/cfg"
)

// Info is the full dominator analysis result for one function's graph.
type Info struct {
	// Dominators[b] is the set of block ids that dominate b (b included).
	Dominators map[int]map[int]bool
	// Idom[b] is b's immediate dominator. The entry block has no entry.
	Idom map[int]int
	// Tree[d] is the set of blocks whose immediate dominator is d.
	Tree map[int][]int
	// Frontier[b] is b's dominance frontier.
	Frontier map[int][]int
}

// Analyze runs the full dominator analysis over g.
func Analyze(g *cfg.Graph) *Info {
	doms := computeDominators(g)
	idom := computeIdom(g, doms)
	tree := computeTree(g, idom)
	frontier := computeFrontier(g, doms, tree)
	return &Info{Dominators: doms, Idom: idom, Tree: tree, Frontier: frontier}
}

// computeDominators runs the classic iterative fixpoint: DOM(entry)={entry},
// DOM(b) = {b} ∪ ⋂_{p ∈ preds(b)} DOM(p), repeated until no set changes.
func computeDominators(g *cfg.Graph) map[int]map[int]bool {
	ids := g.BlockIDs()
	entry := g.EntryID()

	doms := make(map[int]map[int]bool, len(ids))
	all := setOf(ids)
	for _, id := range ids {
		if id == entry {
			doms[id] = setOf([]int{entry})
		} else {
			doms[id] = all
		}
	}

	changed := true
	for changed {
		changed = false
		for _, id := range ids {
			if id == entry {
				continue
			}
			preds := g.Predecessors[id]
			var next map[int]bool
			if len(preds) == 0 {
				next = setOf([]int{id})
			} else {
				next = intersectAll(doms, preds)
				next[id] = true
			}
			if !setEqual(next, doms[id]) {
				doms[id] = next
				changed = true
			}
		}
	}
	return doms
}

// StrictDominators returns the set of blocks that strictly dominate b (b
// excluded).
func (info *Info) StrictDominators(b int) map[int]bool {
	strict := make(map[int]bool, len(info.Dominators[b]))
	for id := range info.Dominators[b] {
		if id != b {
			strict[id] = true
		}
	}
	return strict
}

// computeIdom finds each block's immediate dominator: the unique strict
// dominator that is dominated by every other strict dominator of b. It is
// found by checking each of b's strict dominators in turn and picking the
// one whose own dominator set contains all the others; the CFG's
// predecessor edges are not walked.
func computeIdom(g *cfg.Graph, doms map[int]map[int]bool) map[int]int {
	entry := g.EntryID()
	idom := make(map[int]int)

	for _, id := range g.BlockIDs() {
		if id == entry {
			continue
		}
		strict := make([]int, 0, len(doms[id])-1)
		for d := range doms[id] {
			if d != id {
				strict = append(strict, d)
			}
		}
		for _, cand := range strict {
			isImmediate := true
			for _, other := range strict {
				if other == cand {
					continue
				}
				if !doms[cand][other] {
					isImmediate = false
					break
				}
			}
			if isImmediate {
				idom[id] = cand
				break
			}
		}
	}
	return idom
}

func computeTree(g *cfg.Graph, idom map[int]int) map[int][]int {
	tree := make(map[int][]int)
	for _, id := range g.BlockIDs() {
		tree[id] = nil
	}
	for b, d := range idom {
		tree[d] = append(tree[d], b)
	}
	for d := range tree {
		sort.Ints(tree[d])
	}
	return tree
}

// computeFrontier computes, for each block b, its dominance frontier:
// DF(b) = (⋃_{x ∈ S} succ(x)) ∖ (S ∖ {b}), where S = {b} ∪ the blocks b
// dominator-tree-dominates (the children closure of b in the tree).
func computeFrontier(g *cfg.Graph, doms map[int]map[int]bool, tree map[int][]int) map[int][]int {
	frontier := make(map[int][]int)
	for _, b := range g.BlockIDs() {
		s := dominatedSet(b, tree)
		sMinusB := make(map[int]bool, len(s))
		for id := range s {
			if id != b {
				sMinusB[id] = true
			}
		}

		union := make(map[int]bool)
		for x := range s {
			for _, succ := range g.Successors[x] {
				union[succ] = true
			}
		}

		var df []int
		for id := range union {
			if !sMinusB[id] {
				df = append(df, id)
			}
		}
		sort.Ints(df)
		frontier[b] = df
	}
	return frontier
}

// dominatedSet returns {b} union every block in the dominator tree rooted
// at b (b's transitive tree children).
func dominatedSet(b int, tree map[int][]int) map[int]bool {
	set := map[int]bool{b: true}
	queue := []int{b}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range tree[cur] {
			if !set[child] {
				set[child] = true
				queue = append(queue, child)
			}
		}
	}
	return set
}

func setOf(ids []int) map[int]bool {
	s := make(map[int]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func intersectAll(doms map[int]map[int]bool, ids []int) map[int]bool {
	if len(ids) == 0 {
		return map[int]bool{}
	}
	result := make(map[int]bool, len(doms[ids[0]]))
	for id := range doms[ids[0]] {
		result[id] = true
	}
	for _, id := range ids[1:] {
		for k := range result {
			if !doms[id][k] {
				delete(result, k)
			}
		}
	}
	return result
}

func setEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
