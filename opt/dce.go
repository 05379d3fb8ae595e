// Package opt implements the three optimization passes: global dead-code
// elimination, local redundant-assignment elimination, and local value
// numbering.
package opt

import "github.com/birlc/birl/ir"

// GlobalDCE iteratively removes any instruction whose destination is never
// used as an argument anywhere in the function, repeating to a fixpoint.
// Effect instructions (no destination) are always kept.
func GlobalDCE(blocks map[int][]*ir.Instruction) {
	for deleteUnusedOnce(blocks) {
	}
}

func deleteUnusedOnce(blocks map[int][]*ir.Instruction) bool {
	usedArgs := make(map[string]bool)
	dests := make(map[string]bool)

	for _, instrs := range blocks {
		for _, instr := range instrs {
			for _, arg := range instr.Args {
				usedArgs[arg] = true
			}
			if instr.HasDest() {
				dests[instr.Dest] = true
			}
		}
	}

	unused := make(map[string]bool)
	for d := range dests {
		if !usedArgs[d] {
			unused[d] = true
		}
	}
	if len(unused) == 0 {
		return false
	}

	for id, instrs := range blocks {
		kept := instrs[:0:0]
		for _, instr := range instrs {
			if instr.HasDest() && unused[instr.Dest] {
				continue
			}
			kept = append(kept, instr)
		}
		blocks[id] = kept
	}
	return true
}
