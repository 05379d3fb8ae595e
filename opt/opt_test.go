package opt

import (
	"testing"

	"github.com/birlc/birl/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalDCE_RemovesToFixpoint(t *testing.T) {
	blocks := map[int][]*ir.Instruction{
		0: {
			ir.NewConst("a", ir.TypeInt, ir.IntValue(4)),
			ir.NewConst("b", ir.TypeInt, ir.IntValue(2)),
			ir.NewConst("c", ir.TypeInt, ir.IntValue(1)),
			ir.NewValue(ir.OpAdd, "d", ir.TypeInt, []string{"a", "b"}, nil, nil),
			ir.NewValue(ir.OpAdd, "e", ir.TypeInt, []string{"c", "d"}, nil, nil),
			ir.NewEffect(ir.OpPrint, []string{"d"}, nil, nil),
		},
	}

	GlobalDCE(blocks)

	instrs := blocks[0]
	require.Len(t, instrs, 4)
	assert.Equal(t, "a", instrs[0].Dest)
	assert.Equal(t, "b", instrs[1].Dest)
	assert.Equal(t, "d", instrs[2].Dest)
	assert.Equal(t, ir.OpPrint, instrs[3].Op)
}

func TestEliminateRedundantAssignments_ChainCollapses(t *testing.T) {
	instrs := []*ir.Instruction{
		ir.NewConst("v", ir.TypeInt, ir.IntValue(1)),
		ir.NewValue(ir.OpAdd, "v", ir.TypeInt, []string{"v", "v"}, nil, nil),
		ir.NewConst("v", ir.TypeInt, ir.IntValue(2)),
		ir.NewEffect(ir.OpPrint, []string{"v"}, nil, nil),
	}

	result := EliminateRedundantAssignments(instrs)
	require.Len(t, result, 2)
	assert.Equal(t, ir.IntValue(2), result[0].Value)
	assert.Equal(t, ir.OpPrint, result[1].Op)
}

func TestEliminateRedundantAssignments_UseBlocksElimination(t *testing.T) {
	instrs := []*ir.Instruction{
		ir.NewConst("v", ir.TypeInt, ir.IntValue(1)),
		ir.NewEffect(ir.OpPrint, []string{"v"}, nil, nil),
		ir.NewConst("v", ir.TypeInt, ir.IntValue(2)),
	}

	result := EliminateRedundantAssignments(instrs)
	require.Len(t, result, 3)
}

func TestLocalValueNumbering_RewritesDuplicateExpr(t *testing.T) {
	instrs := []*ir.Instruction{
		ir.NewConst("a", ir.TypeInt, ir.IntValue(4)),
		ir.NewConst("b", ir.TypeInt, ir.IntValue(2)),
		ir.NewValue(ir.OpAdd, "s1", ir.TypeInt, []string{"a", "b"}, nil, nil),
		ir.NewValue(ir.OpAdd, "s2", ir.TypeInt, []string{"a", "b"}, nil, nil),
		ir.NewValue(ir.OpMul, "p", ir.TypeInt, []string{"s1", "s2"}, nil, nil),
	}

	result := LocalValueNumbering(instrs)
	require.Len(t, result, 5)

	s2 := result[3]
	assert.Equal(t, ir.OpID, s2.Op)
	assert.Equal(t, []string{"s1"}, s2.Args)

	p := result[4]
	assert.Equal(t, []string{"s1", "s1"}, p.Args)
}

func TestLocalValueNumbering_UndeclaredOperandLeavesInstrUnrewritten(t *testing.T) {
	instrs := []*ir.Instruction{
		ir.NewValue(ir.OpAdd, "d", ir.TypeInt, []string{"missing1", "missing2"}, nil, nil),
	}
	result := LocalValueNumbering(instrs)
	require.Len(t, result, 1)
	assert.Equal(t, ir.OpAdd, result[0].Op)
	assert.Equal(t, []string{"missing1", "missing2"}, result[0].Args)
}
