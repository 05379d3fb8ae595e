package opt

import (
	"fmt"

	"github.com/birlc/birl/ir"
)

// canonicalExpr is the hashable key for one value-numbering table entry: an
// operation tag plus the value-numbers of its operands, in order.
type canonicalExpr struct {
	op   string
	args string // operand value-numbers, joined, so the struct stays comparable
}

// LocalValueNumbering runs local value numbering over one block's
// instructions, rewriting redundant value computations to `id` of their
// first-computed equivalent. Returns a new instruction slice; every
// rewritten or normalized instruction is a clone, so the input
// instructions (which may be shared elsewhere) are never mutated.
//
// An instruction whose operand has no registered value-number (a name the
// pass has not seen defined in this block) is left unrewritten — this is
// the sole LVN internal error case named in the error taxonomy.
func LocalValueNumbering(instrs []*ir.Instruction) []*ir.Instruction {
	env := make(map[string]int)   // variable name -> value number
	table := make(map[canonicalExpr]int)
	names := make(map[int]string) // value number -> canonical variable name

	out := make([]*ir.Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = canonicalizeAndRewrite(instr, env, table, names)
	}
	return out
}

func canonicalizeAndRewrite(instr *ir.Instruction, env map[string]int, table map[canonicalExpr]int, names map[int]string) *ir.Instruction {
	if !instr.IsInstr() {
		return instr
	}

	switch instr.Kind {
	case ir.KindConst:
		key := canonicalExpr{op: fmt.Sprintf("const_%s", instr.Value.String())}
		register(key, instr.Dest, env, table, names)
		return instr

	case ir.KindValue:
		if instr.Op == ir.OpPhi {
			// Φ-nodes are not value-numbered: their value depends on
			// control flow, not purely on operand identity.
			return instr
		}
		argNums := make([]int, len(instr.Args))
		for i, arg := range instr.Args {
			num, ok := env[arg]
			if !ok {
				// undeclared operand: bail, leave instruction unrewritten.
				return instr
			}
			argNums[i] = num
		}
		key := canonicalExpr{op: instr.Op.String(), args: joinInts(argNums)}

		if existing, ok := table[key]; ok {
			env[instr.Dest] = existing
			rewritten := instr.Clone()
			rewritten.Op = ir.OpID
			rewritten.Args = []string{names[existing]}
			return rewritten
		}

		newNum := len(table)
		table[key] = newNum
		env[instr.Dest] = newNum
		names[newNum] = instr.Dest

		normalized := instr.Clone()
		for i, arg := range instr.Args {
			if name, ok := names[argNums[i]]; ok {
				normalized.Args[i] = name
			} else {
				normalized.Args[i] = arg
			}
		}
		return normalized

	default:
		return instr
	}
}

func register(key canonicalExpr, dest string, env map[string]int, table map[canonicalExpr]int, names map[int]string) {
	if existing, ok := table[key]; ok {
		env[dest] = existing
		return
	}
	newNum := len(table)
	table[key] = newNum
	env[dest] = newNum
	names[newNum] = dest
}

func joinInts(nums []int) string {
	s := ""
	for i, n := range nums {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", n)
	}
	return s
}
