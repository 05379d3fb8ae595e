// Package block partitions a function's flat instruction stream into basic
// blocks: maximal straight-line instruction runs with a single entry and a
// single exit.
package block

import (
	"errors"
	"fmt"

	"github.com/birlc/birl/ir"
)

// BasicBlock is a maximal straight-line run of instructions. If the block
// began with a label, that label is its first entry in Instrs. Name is
// either that leading label's text, or a generated "block_<id>".
type BasicBlock struct {
	ID     int
	Name   string
	Instrs []*ir.Instruction
}

// Label returns the text of the block's leading label, or "" if the block
// has none (the first block of a function, or any block that starts right
// after a terminator without a label).
func (b *BasicBlock) Label() string {
	if len(b.Instrs) > 0 && b.Instrs[0].Kind == ir.KindLabel {
		return b.Instrs[0].Label
	}
	return ""
}

// Terminator returns the block's closing instruction, or nil if the block
// falls through (its last instruction is not a terminator).
func (b *BasicBlock) Terminator() *ir.Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// FunctionBlocks is a function partitioned into basic blocks, in original
// source order, with both of its lookup maps populated (§3's FunctionBlocks
// model).
type FunctionBlocks struct {
	Name   string
	Args   []ir.FunctionArg
	Blocks []*BasicBlock

	// IDIndex maps a block id to its position in Blocks.
	IDIndex map[int]int
	// NameToID maps a block's name (its label, or a generated "block_<id>")
	// to its id.
	NameToID map[string]int
}

// DuplicateLabelError reports a single block name collision found while
// assigning names: either two identical user labels, or a generated
// "block_<id>" name that collides with a user label.
type DuplicateLabelError struct {
	Name string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("block: duplicate block name %q", e.Name)
}

// Build partitions a function's instruction stream into basic blocks and
// assigns each one a unique id and name.
//
// A block closes (inclusively) at a terminator instruction (jmp/br/ret).
// A label instruction closes the current block (if non-empty) and opens a
// new block beginning with that label. Any trailing buffer is flushed as a
// final block once the instruction stream is exhausted, matching
// load_function_blocks's end-of-function flush.
//
// A block's name is its leading label's text if it has one, otherwise the
// generated name "block_<id>". Every name in the function must be unique;
// if two blocks end up with the same name, Build keeps building (so the
// caller sees every collision at once) and returns a combined error built
// with errors.Join, one *DuplicateLabelError per collision.
func Build(fn *ir.Function) (*FunctionBlocks, error) {
	var blocks []*BasicBlock
	var cur []*ir.Instruction

	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, &BasicBlock{ID: len(blocks), Instrs: cur})
			cur = nil
		}
	}

	for _, instr := range fn.Instrs {
		if instr.Kind == ir.KindLabel {
			flush()
			cur = append(cur, instr)
			continue
		}
		cur = append(cur, instr)
		if instr.IsTerminator() {
			flush()
		}
	}
	flush()

	idIndex := make(map[int]int, len(blocks))
	nameToID := make(map[string]int, len(blocks))
	var errs []error
	for i, b := range blocks {
		if label := b.Label(); label != "" {
			b.Name = label
		} else {
			b.Name = fmt.Sprintf("block_%d", b.ID)
		}
		idIndex[b.ID] = i
		if _, exists := nameToID[b.Name]; exists {
			errs = append(errs, &DuplicateLabelError{Name: b.Name})
			continue
		}
		nameToID[b.Name] = b.ID
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &FunctionBlocks{
		Name:     fn.Name,
		Args:     fn.Args,
		Blocks:   blocks,
		IDIndex:  idIndex,
		NameToID: nameToID,
	}, nil
}
