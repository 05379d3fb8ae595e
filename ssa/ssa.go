// Package ssa converts a function's control-flow graph into pruned SSA
// form: Φ-node insertion at dominance-frontier join points followed by a
// dominator-tree-driven renaming pass.
package ssa

import (
	"fmt"
	"sort"

	"github.com/birlc/birl/block"
	"github.com/birlc/birl/cfg"
	"github.com/birlc/birl/dom"
	"github.com/birlc/birl/ir"
)

// nameStack is a per-variable rename stack. Pushing a new name shadows the
// previous one for the remainder of the dominator-subtree rename walk.
type nameStack struct {
	names      []string
	nextSuffix int
}

func (s *nameStack) peek() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[len(s.names)-1]
}

func (s *nameStack) isEmpty() bool { return len(s.names) == 0 }

func (s *nameStack) push(name string) { s.names = append(s.names, name) }

func (s *nameStack) pop() { s.names = s.names[:len(s.names)-1] }

// fresh mints a new versioned name of the form "<orig>.<n>" and pushes it.
// n starts at 1 and counts up per variable.
func (s *nameStack) fresh(orig string) string {
	s.nextSuffix++
	name := fmt.Sprintf("%s.%d", orig, s.nextSuffix)
	s.push(name)
	return name
}

// phiScaffold is the in-progress state of one Φ-node being built for a
// variable at a join block, before it is finalized into an *ir.Instruction.
type phiScaffold struct {
	origName string
	dest     string
	typ      ir.Type
	// args[predBlockID] is the renamed variable flowing in from that
	// predecessor, filled in during the rename pass.
	args map[int]string
}

// Builder drives pruned SSA construction over one function's graph.
type Builder struct {
	Graph *cfg.Graph
	Dom   *dom.Info

	allVars map[string]ir.Type
	// phis[blockID][varName] is the staged Φ-node for varName at blockID.
	phis map[int]map[string]*phiScaffold

	stacks map[string]*nameStack

	// RenameFailures holds one entry per use of a variable with no
	// reaching definition on the current path: the original (pre-rename)
	// instruction containing that use. Neither the block id nor the name
	// of the undefined variable is recorded.
	RenameFailures []*ir.Instruction
}

// NewBuilder prepares an SSA builder for one function's graph.
func NewBuilder(g *cfg.Graph, info *dom.Info) *Builder {
	return &Builder{
		Graph:  g,
		Dom:    info,
		phis:   make(map[int]map[string]*phiScaffold),
		stacks: make(map[string]*nameStack),
	}
}

// Convert runs the full two-phase pruned-SSA construction and returns the
// rewritten per-block instruction lists, indexed by block id.
func (b *Builder) Convert() map[int][]*ir.Instruction {
	b.allVars = b.collectVars()
	b.insertPhiNodes()
	for name := range b.allVars {
		b.stacks[name] = &nameStack{}
	}
	result := make(map[int][]*ir.Instruction)
	b.renameVars(b.Graph.EntryID(), result)
	b.finalizePhiNodes(result)
	return result
}

func (b *Builder) collectVars() map[string]ir.Type {
	vars := make(map[string]ir.Type)
	for _, blk := range b.Graph.Blocks {
		for _, instr := range blk.Instrs {
			if instr.HasDest() {
				vars[instr.Dest] = instr.Type
			}
		}
	}
	return vars
}

// insertPhiNodes is Phase 1: for each variable, seed a worklist with its
// defining blocks and propagate Φ-node placement across dominance
// frontiers until the worklist is empty (Cytron's algorithm).
func (b *Builder) insertPhiNodes() {
	defsByVar := make(map[string]map[int]bool)
	for _, blk := range b.Graph.Blocks {
		for _, instr := range blk.Instrs {
			if instr.HasDest() {
				if defsByVar[instr.Dest] == nil {
					defsByVar[instr.Dest] = make(map[int]bool)
				}
				defsByVar[instr.Dest][blk.ID] = true
			}
		}
	}

	for name, defs := range defsByVar {
		hasPhi := make(map[int]bool)
		worklist := make([]int, 0, len(defs))
		for id := range defs {
			worklist = append(worklist, id)
		}
		sort.Ints(worklist)

		for len(worklist) > 0 {
			blockID := worklist[0]
			worklist = worklist[1:]
			for _, frontierID := range b.Dom.Frontier[blockID] {
				if hasPhi[frontierID] {
					continue
				}
				hasPhi[frontierID] = true
				b.stagePhi(frontierID, name)
				if !defs[frontierID] {
					defs[frontierID] = true
					worklist = append(worklist, frontierID)
					sort.Ints(worklist)
				}
			}
		}
	}
}

func (b *Builder) stagePhi(blockID int, name string) {
	if b.phis[blockID] == nil {
		b.phis[blockID] = make(map[string]*phiScaffold)
	}
	if _, ok := b.phis[blockID][name]; ok {
		return
	}
	b.phis[blockID][name] = &phiScaffold{
		origName: name,
		typ:      b.allVars[name],
		args:     make(map[int]string),
	}
}

// renameVars is Phase 2: a recursive walk of the dominator tree, maintaining
// one rename stack per original variable name. Dominator-tree children are
// visited in ascending block-id order so the renaming is deterministic.
func (b *Builder) renameVars(blockID int, result map[int][]*ir.Instruction) {
	pushed := make([]string, 0)

	// Destinations of Φ-nodes staged at this block get fresh names first,
	// so that uses within this block (and the Φ args recorded by
	// successors) see the new name.
	if phis := b.phis[blockID]; phis != nil {
		names := sortedKeys(phis)
		for _, name := range names {
			p := phis[name]
			p.dest = b.stacks[name].fresh(name)
			pushed = append(pushed, name)
		}
	}

	var out []*ir.Instruction
	blk := b.findBlock(blockID)
	for _, instr := range blk.Instrs {
		switch instr.Kind {
		case ir.KindLabel:
			out = append(out, instr)
			continue
		case ir.KindConst:
			renamed := instr.Clone()
			renamed.Dest = b.stacks[instr.Dest].fresh(instr.Dest)
			out = append(out, renamed)
			pushed = append(pushed, instr.Dest)
		case ir.KindValue:
			renamed := instr.Clone()
			for i, arg := range renamed.Args {
				renamed.Args[i] = b.resolve(arg, instr)
			}
			renamed.Dest = b.stacks[instr.Dest].fresh(instr.Dest)
			out = append(out, renamed)
			pushed = append(pushed, instr.Dest)
		case ir.KindEffect:
			renamed := instr.Clone()
			for i, arg := range renamed.Args {
				renamed.Args[i] = b.resolve(arg, instr)
			}
			out = append(out, renamed)
		}
	}
	result[blockID] = out

	// Fill in this block's contribution to each successor's staged
	// Φ-nodes. A predecessor with no reaching definition for name (its
	// rename stack is empty on this path) contributes no entry at all,
	// per §4.4 Phase 2 point 3 — it is skipped, not given a placeholder.
	for _, succID := range b.Graph.Successors[blockID] {
		for name, p := range b.phis[succID] {
			if stack := b.stacks[name]; !stack.isEmpty() {
				p.args[blockID] = stack.peek()
			}
		}
	}

	children := append([]int(nil), b.Dom.Tree[blockID]...)
	sort.Ints(children)
	for _, child := range children {
		b.renameVars(child, result)
	}

	for _, name := range pushed {
		b.stacks[name].pop()
	}
}

// resolve looks up the current SSA name for orig, recording a rename
// failure (and leaving the original name in place) if orig has no reaching
// definition on this path.
func (b *Builder) resolve(orig string, owner *ir.Instruction) string {
	stack := b.stacks[orig]
	if stack == nil || stack.isEmpty() {
		b.RenameFailures = append(b.RenameFailures, owner)
		return orig
	}
	return stack.peek()
}

// finalizePhiNodes splices the now-fully-argumented Φ instructions into
// each block's instruction list, immediately after the label if present.
func (b *Builder) finalizePhiNodes(result map[int][]*ir.Instruction) {
	for _, blockID := range b.Graph.BlockIDs() {
		phis := b.phis[blockID]
		if len(phis) == 0 {
			continue
		}
		names := sortedKeys(phis)

		var phiInstrs []*ir.Instruction
		for _, name := range names {
			p := phis[name]
			args := make([]string, 0, len(p.args))
			labels := make([]string, 0, len(p.args))
			preds := append([]int(nil), b.Graph.Predecessors[blockID]...)
			sort.Ints(preds)
			for _, predID := range preds {
				val, ok := p.args[predID]
				if !ok {
					// No reaching definition for this variable along this
					// predecessor edge — omit the entry rather than invent
					// one (§4.4 Phase 2 point 3).
					continue
				}
				args = append(args, val)
				labels = append(labels, b.Graph.NameOf(predID))
			}
			phiInstrs = append(phiInstrs, ir.NewValue(ir.OpPhi, p.dest, p.typ, args, nil, labels))
		}

		instrs := result[blockID]
		insertAt := 0
		if len(instrs) > 0 && instrs[0].Kind == ir.KindLabel {
			insertAt = 1
		}
		merged := make([]*ir.Instruction, 0, len(instrs)+len(phiInstrs))
		merged = append(merged, instrs[:insertAt]...)
		merged = append(merged, phiInstrs...)
		merged = append(merged, instrs[insertAt:]...)
		result[blockID] = merged
	}
}

func (b *Builder) findBlock(id int) *block.BasicBlock {
	for _, blk := range b.Graph.Blocks {
		if blk.ID == id {
			return blk
		}
	}
	return &block.BasicBlock{}
}

func sortedKeys(m map[string]*phiScaffold) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
