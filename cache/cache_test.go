package cache

import (
	"testing"

	"github.com/birlc/birl/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeKey_StableAndIgnoresPipeline(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Instrs: []*ir.Instruction{
			ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
		},
	}

	k1 := ComputeKey(fn)
	k2 := ComputeKey(fn)
	assert.Equal(t, k1, k2, "hashing the same function twice must be stable")

	other := &ir.Function{
		Name: "g",
		Instrs: []*ir.Instruction{
			ir.NewConst("a", ir.TypeInt, ir.IntValue(1)),
		},
	}
	assert.NotEqual(t, k1, ComputeKey(other), "different function names must not collide")
}

func TestCache_MemoryTierRoundTrip(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	key := Key("abc")
	_, ok := c.Get(key)
	assert.False(t, ok)

	entry := Entry{
		Blocks:        map[int][]*ir.Instruction{0: {ir.NewEffect(ir.OpRet, nil, nil, nil)}},
		AppliedPasses: []string{"lvn"},
	}
	require.NoError(t, c.Put(key, entry))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"lvn"}, got.AppliedPasses)
	assert.Len(t, got.Blocks[0], 1)
}

func TestCache_OnDiskTierPersists(t *testing.T) {
	path := t.TempDir() + "/cache.db"
	c, err := Open(4, path)
	require.NoError(t, err)
	defer c.Close()

	key := Key("disk-key")
	entry := Entry{
		Blocks:        map[int][]*ir.Instruction{0: {ir.NewConst("a", ir.TypeInt, ir.IntValue(1))}},
		AppliedPasses: []string{"dce"},
	}
	require.NoError(t, c.Put(key, entry))

	reopened, err := Open(4, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"dce"}, got.AppliedPasses)
	require.Len(t, got.Blocks[0], 1)
	assert.Equal(t, "a", got.Blocks[0][0].Dest)
}
