// Package cfg builds a control-flow graph over a function's basic blocks:
// predecessor/successor adjacency and jump-target resolution.
package cfg

import (
	"fmt"
	"sort"

	"github.com/birlc/birl/block"
)

// Graph is a function's control-flow graph: predecessor/successor adjacency
// keyed by block id, plus the full set of block ids present.
type Graph struct {
	Blocks       []*block.BasicBlock
	Predecessors map[int][]int
	Successors   map[int][]int
}

// Build constructs a Graph from a function's basic blocks.
//
// Jump targets are resolved through fb.NameToID, since a block's name is
// exactly the label text a jmp/br instruction targets. A block ending in
// jmp/br takes its successors from the target labels. A block that does
// not end in a terminator falls through to the next block in program
// order. A block ending in ret has no successors. Predecessors are the
// inverse of successors. A jmp/br to a label that names no block makes
// Build return an error and no graph; the target is not dropped and
// construction does not continue.
func Build(fb *block.FunctionBlocks) (*Graph, error) {
	blocks := fb.Blocks
	g := &Graph{
		Blocks:       blocks,
		Predecessors: make(map[int][]int, len(blocks)),
		Successors:   make(map[int][]int, len(blocks)),
	}
	for _, b := range blocks {
		g.Predecessors[b.ID] = nil
		g.Successors[b.ID] = nil
	}

	for i, b := range blocks {
		term := b.Terminator()
		switch {
		case term == nil:
			if i+1 < len(blocks) {
				g.addEdge(b.ID, blocks[i+1].ID)
			}
		case term.IsJump():
			for _, label := range term.Labels {
				targetID, ok := fb.NameToID[label]
				if !ok {
					return nil, fmt.Errorf("cfg: jump to undefined label %q in block %s", label, b.Name)
				}
				g.addEdge(b.ID, targetID)
			}
		default:
			// ret: no successors.
		}
	}

	return g, nil
}

func (g *Graph) addEdge(from, to int) {
	g.Successors[from] = append(g.Successors[from], to)
	g.Predecessors[to] = append(g.Predecessors[to], from)
}

// BlockIDs returns every block id in ascending order.
func (g *Graph) BlockIDs() []int {
	ids := make([]int, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		ids = append(ids, b.ID)
	}
	sort.Ints(ids)
	return ids
}

// EntryID returns the id of the function's entry block (always the first
// block in program order), or -1 if the function has no blocks.
func (g *Graph) EntryID() int {
	if len(g.Blocks) == 0 {
		return -1
	}
	return g.Blocks[0].ID
}

// NameOf returns the display name of the block with the given id.
func (g *Graph) NameOf(id int) string {
	for _, b := range g.Blocks {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}
