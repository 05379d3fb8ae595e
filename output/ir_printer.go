package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/birlc/birl/cfg"
	"github.com/birlc/birl/dom"
	"github.com/birlc/birl/ir"
)

// IRPrinter renders a function's block form, CFG + dominator tree form, and
// SSA form to text, following §6's exact textual output grammar. It is the
// driver's sole consumer of the compiler's analysis results; it never
// mutates them.
type IRPrinter struct {
	writer io.Writer
}

// NewIRPrinter creates a printer writing to stdout.
func NewIRPrinter() *IRPrinter {
	return &IRPrinter{writer: os.Stdout}
}

// NewIRPrinterWithWriter creates a printer with a custom writer (for
// testing).
func NewIRPrinterWithWriter(w io.Writer) *IRPrinter {
	return &IRPrinter{writer: w}
}

// PrintBlocks prints a function's block form: one block per header, its
// instructions indented beneath.
func (p *IRPrinter) PrintBlocks(fn *ir.Function, g *cfg.Graph) {
	p.printFunctionHeader(fn)
	for _, blk := range g.Blocks {
		fmt.Fprintf(p.writer, "#%s\n", blk.Name)
		for _, instr := range blk.Instrs {
			p.printInstr(instr)
		}
	}
	fmt.Fprintln(p.writer, "}")
}

// PrintCFG prints a function's CFG edges and dominator tree alongside its
// block form.
func (p *IRPrinter) PrintCFG(fn *ir.Function, g *cfg.Graph, info *dom.Info) {
	p.printFunctionHeader(fn)
	for _, blk := range g.Blocks {
		fmt.Fprintf(p.writer, "#%s\n", blk.Name)
		for _, instr := range blk.Instrs {
			p.printInstr(instr)
		}
		succNames := make([]string, 0, len(g.Successors[blk.ID]))
		for _, s := range g.Successors[blk.ID] {
			succNames = append(succNames, g.NameOf(s))
		}
		fmt.Fprintf(p.writer, "    ; successors: %s\n", strings.Join(succNames, ", "))
		if idom, ok := info.Idom[blk.ID]; ok {
			fmt.Fprintf(p.writer, "    ; idom: %s\n", g.NameOf(idom))
		}
		frontierNames := make([]string, 0, len(info.Frontier[blk.ID]))
		for _, f := range info.Frontier[blk.ID] {
			frontierNames = append(frontierNames, g.NameOf(f))
		}
		fmt.Fprintf(p.writer, "    ; dominance frontier: %s\n", strings.Join(frontierNames, ", "))
	}
	fmt.Fprintln(p.writer, "}")
}

// PrintSSA prints a function already converted to SSA form, using the
// block order and names of g.
func (p *IRPrinter) PrintSSA(fn *ir.Function, g *cfg.Graph, ssaBlocks map[int][]*ir.Instruction) {
	p.printFunctionHeader(fn)
	for _, blk := range g.Blocks {
		fmt.Fprintf(p.writer, "#%s\n", blk.Name)
		for _, instr := range ssaBlocks[blk.ID] {
			p.printInstr(instr)
		}
	}
	fmt.Fprintln(p.writer, "}")
}

func (p *IRPrinter) printFunctionHeader(fn *ir.Function) {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		args[i] = fmt.Sprintf("%s: %s", a.Name, a.Type)
	}
	fmt.Fprintf(p.writer, "@%s(%s) {\n", fn.Name, strings.Join(args, ", "))
}

func (p *IRPrinter) printInstr(instr *ir.Instruction) {
	switch instr.Kind {
	case ir.KindLabel:
		fmt.Fprintf(p.writer, ".%s:\n", instr.Label)
	case ir.KindConst:
		fmt.Fprintf(p.writer, "    %s: %s = const %s\n", instr.Dest, instr.Type, instr.Value)
	case ir.KindValue:
		fmt.Fprintf(p.writer, "    %s: %s = %s %s\n", instr.Dest, instr.Type, instr.Op, p.operandSuffix(instr))
	case ir.KindEffect:
		fmt.Fprintf(p.writer, "    %s %s\n", instr.Op, p.operandSuffix(instr))
	}
}

func (p *IRPrinter) operandSuffix(instr *ir.Instruction) string {
	var parts []string
	parts = append(parts, instr.Args...)
	for _, l := range instr.Labels {
		parts = append(parts, "."+l)
	}
	parts = append(parts, instr.Funcs...)
	return strings.Join(parts, " ")
}
