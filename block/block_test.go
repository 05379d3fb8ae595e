package block

import (
	"testing"

	"github.com/birlc/birl/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SplitsOnTerminatorAndLabel(t *testing.T) {
	fn := &ir.Function{
		Name: "main",
		Instrs: []*ir.Instruction{
			ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
			ir.NewEffect(ir.OpJump, nil, nil, []string{"loop"}),
			ir.NewLabel("loop"),
			ir.NewValue(ir.OpAdd, "b", ir.TypeInt, []string{"a", "a"}, nil, nil),
			ir.NewEffect(ir.OpRet, nil, nil, nil),
		},
	}

	fb, err := Build(fn)
	require.NoError(t, err)
	require.Len(t, fb.Blocks, 2)

	assert.Equal(t, 0, fb.Blocks[0].ID)
	assert.Len(t, fb.Blocks[0].Instrs, 2)
	assert.Equal(t, ir.OpJump, fb.Blocks[0].Terminator().Op)
	assert.Equal(t, "", fb.Blocks[0].Label())
	assert.Equal(t, "block_0", fb.Blocks[0].Name)

	assert.Equal(t, 1, fb.Blocks[1].ID)
	assert.Len(t, fb.Blocks[1].Instrs, 3)
	assert.Equal(t, "loop", fb.Blocks[1].Label())
	assert.Equal(t, "loop", fb.Blocks[1].Name)
	assert.Equal(t, ir.OpRet, fb.Blocks[1].Terminator().Op)

	assert.Equal(t, 0, fb.IDIndex[0])
	assert.Equal(t, 1, fb.IDIndex[1])
	assert.Equal(t, 0, fb.NameToID["block_0"])
	assert.Equal(t, 1, fb.NameToID["loop"])
}

func TestBuild_FlushesTrailingBlockWithoutTerminator(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Instrs: []*ir.Instruction{
			ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
			ir.NewValue(ir.OpID, "b", ir.TypeInt, []string{"a"}, nil, nil),
		},
	}

	fb, err := Build(fn)
	require.NoError(t, err)
	require.Len(t, fb.Blocks, 1)
	assert.Nil(t, fb.Blocks[0].Terminator())
	assert.Len(t, fb.Blocks[0].Instrs, 2)
}

func TestBuild_EmptyFunctionYieldsNoBlocks(t *testing.T) {
	fn := &ir.Function{Name: "empty"}
	fb, err := Build(fn)
	require.NoError(t, err)
	assert.Empty(t, fb.Blocks)
}

func TestBuild_DuplicateLabelIsAnError(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Instrs: []*ir.Instruction{
			ir.NewEffect(ir.OpJump, nil, nil, []string{"loop"}),
			ir.NewLabel("loop"),
			ir.NewEffect(ir.OpJump, nil, nil, []string{"loop"}),
			ir.NewLabel("loop"),
			ir.NewEffect(ir.OpRet, nil, nil, nil),
		},
	}

	fb, err := Build(fn)
	assert.Nil(t, fb)
	require.Error(t, err)

	var dup *DuplicateLabelError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "loop", dup.Name)
}

func TestBuild_GeneratedNameCollidingWithUserLabelIsAnError(t *testing.T) {
	// Block 0 closes at the jmp. Block 1 (no leading label) gets the
	// generated name "block_1", colliding with block 2's user label
	// "block_1".
	fn := &ir.Function{
		Name: "f",
		Instrs: []*ir.Instruction{
			ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
			ir.NewEffect(ir.OpJump, nil, nil, []string{"mid"}),
			ir.NewValue(ir.OpID, "b", ir.TypeInt, []string{"a"}, nil, nil),
			ir.NewEffect(ir.OpRet, nil, nil, nil),
			ir.NewLabel("block_1"),
			ir.NewEffect(ir.OpRet, nil, nil, nil),
		},
	}

	fb, err := Build(fn)
	assert.Nil(t, fb)
	require.Error(t, err)

	var dup *DuplicateLabelError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "block_1", dup.Name)
}
