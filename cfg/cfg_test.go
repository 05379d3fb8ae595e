package cfg

import (
	"testing"

	"github.com/birlc/birl/block"
	"github.com/birlc/birl/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBlocks(t *testing.T, instrs []*ir.Instruction) *block.FunctionBlocks {
	t.Helper()
	fb, err := block.Build(&ir.Function{Name: "f", Instrs: instrs})
	require.NoError(t, err)
	return fb
}

func TestBuild_BranchJumpAndRetEdges(t *testing.T) {
	fb := buildBlocks(t, []*ir.Instruction{
		ir.NewConst("cond", ir.TypeBool, ir.BoolValue(true)),
		ir.NewEffect(ir.OpBranch, []string{"cond"}, nil, []string{"then", "else"}),
		ir.NewLabel("then"),
		ir.NewEffect(ir.OpJump, nil, nil, []string{"end"}),
		ir.NewLabel("else"),
		ir.NewEffect(ir.OpRet, nil, nil, nil),
		ir.NewLabel("end"),
		ir.NewEffect(ir.OpRet, nil, nil, nil),
	})
	require.Len(t, fb.Blocks, 4)

	g, err := Build(fb)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{1, 2}, g.Successors[0])
	assert.ElementsMatch(t, []int{3}, g.Successors[1])
	assert.Empty(t, g.Successors[2])
	assert.Empty(t, g.Successors[3])

	assert.ElementsMatch(t, []int{0}, g.Predecessors[1])
	assert.ElementsMatch(t, []int{0}, g.Predecessors[2])
	assert.ElementsMatch(t, []int{1}, g.Predecessors[3])
}

func TestBuild_UndefinedLabelIsAnError(t *testing.T) {
	fb := buildBlocks(t, []*ir.Instruction{
		ir.NewEffect(ir.OpJump, nil, nil, []string{"nowhere"}),
	})
	_, err := Build(fb)
	assert.Error(t, err)
}

func TestBlockNames_LabelVerbatimOrGenerated(t *testing.T) {
	fb := buildBlocks(t, []*ir.Instruction{
		ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
		ir.NewLabel("loop"),
		ir.NewEffect(ir.OpRet, nil, nil, nil),
	})
	require.Len(t, fb.Blocks, 2)
	assert.Equal(t, "block_0", fb.Blocks[0].Name)
	assert.Equal(t, "loop", fb.Blocks[1].Name)

	g, err := Build(fb)
	require.NoError(t, err)
	assert.Equal(t, "block_0", g.NameOf(0))
	assert.Equal(t, "loop", g.NameOf(1))
}
