package dom

import (
	"testing"

	"github.com/birlc/birl/block"
	"github.com/birlc/birl/cfg"
	"github.com/birlc/birl/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds: 0 -> {1,2} -> 3, a classic diamond CFG.
func diamond(t *testing.T) *cfg.Graph {
	t.Helper()
	fb, err := block.Build(&ir.Function{Name: "f", Instrs: []*ir.Instruction{
		ir.NewConst("cond", ir.TypeBool, ir.BoolValue(true)),
		ir.NewEffect(ir.OpBranch, []string{"cond"}, nil, []string{"l", "r"}),
		ir.NewLabel("l"),
		ir.NewEffect(ir.OpJump, nil, nil, []string{"end"}),
		ir.NewLabel("r"),
		ir.NewEffect(ir.OpJump, nil, nil, []string{"end"}),
		ir.NewLabel("end"),
		ir.NewEffect(ir.OpRet, nil, nil, nil),
	}})
	require.NoError(t, err)
	g, err := cfg.Build(fb)
	require.NoError(t, err)
	return g
}

func TestAnalyze_Diamond(t *testing.T) {
	g := diamond(t)
	info := Analyze(g)

	assert.True(t, info.Dominators[3][0])
	assert.False(t, info.Dominators[3][1])
	assert.False(t, info.Dominators[3][2])

	assert.Equal(t, 0, info.Idom[1])
	assert.Equal(t, 0, info.Idom[2])
	assert.Equal(t, 0, info.Idom[3])

	assert.ElementsMatch(t, []int{1, 2, 3}, info.Tree[0])

	assert.Empty(t, info.Frontier[0])
	assert.ElementsMatch(t, []int{3}, info.Frontier[1])
	assert.ElementsMatch(t, []int{3}, info.Frontier[2])
}

func TestStrictDominators_ExcludesSelf(t *testing.T) {
	g := diamond(t)
	info := Analyze(g)
	strict := info.StrictDominators(3)
	assert.False(t, strict[3])
	assert.True(t, strict[0])
}

// loopGraph builds: 0 -> 1, 1 -> 1 (self-loop back edge), 1 -> 2.
func loopGraph(t *testing.T) *cfg.Graph {
	t.Helper()
	fb, err := block.Build(&ir.Function{Name: "f", Instrs: []*ir.Instruction{
		ir.NewEffect(ir.OpJump, nil, nil, []string{"head"}),
		ir.NewLabel("head"),
		ir.NewConst("cond", ir.TypeBool, ir.BoolValue(true)),
		ir.NewEffect(ir.OpBranch, []string{"cond"}, nil, []string{"head", "exit"}),
		ir.NewLabel("exit"),
		ir.NewEffect(ir.OpRet, nil, nil, nil),
	}})
	require.NoError(t, err)
	g, err := cfg.Build(fb)
	require.NoError(t, err)
	return g
}

func TestAnalyze_Loop(t *testing.T) {
	g := loopGraph(t)
	info := Analyze(g)

	assert.Equal(t, 0, info.Idom[1])
	assert.Equal(t, 1, info.Idom[2])
	assert.ElementsMatch(t, []int{1}, info.Frontier[1])
}
