package opt

import "github.com/birlc/birl/ir"

// EliminateRedundantAssignments removes, per block, any write to a
// variable v that is overwritten later in the same block without any
// intervening use of v as an argument. Iterates to a fixpoint: eliminating
// one redundant write can expose another (e.g. a chain of overwrites).
func EliminateRedundantAssignments(instrs []*ir.Instruction) []*ir.Instruction {
	for {
		next, changed := deleteRedundantOnce(instrs)
		instrs = next
		if !changed {
			return instrs
		}
	}
}

func deleteRedundantOnce(instrs []*ir.Instruction) ([]*ir.Instruction, bool) {
	lastDef := make(map[string]*ir.Instruction)
	toDelete := make(map[*ir.Instruction]bool)

	for _, instr := range instrs {
		for _, arg := range instr.Args {
			delete(lastDef, arg)
		}
		if instr.HasDest() {
			if prev, ok := lastDef[instr.Dest]; ok {
				toDelete[prev] = true
			}
			lastDef[instr.Dest] = instr
		}
	}

	if len(toDelete) == 0 {
		return instrs, false
	}

	kept := make([]*ir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		if !toDelete[instr] {
			kept = append(kept, instr)
		}
	}
	return kept, true
}
