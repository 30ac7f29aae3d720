package certmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWitnessSingleInclusion(t *testing.T) {
	tree := New("")
	tree.Insert("gw_00000000000000000016", []byte("hello"))
	tree.Insert("gw_00000000000000000017", []byte("world"))

	root := tree.Root()

	data, err := tree.WitnessSingle("gw_00000000000000000016")
	require.NoError(t, err)

	node, err := DecodeWitness(data)
	require.NoError(t, err)

	assert.Equal(t, root, node.LabelledRoot(DefaultLabel))

	digest, found := node.Lookup("gw_00000000000000000016")
	require.True(t, found)
	assert.NotEmpty(t, digest)
}

func TestWitnessRangeCoversExactlyTheBatch(t *testing.T) {
	tree := New("")
	keys := []string{
		"gw_00000000000000000016",
		"gw_00000000000000000017",
		"gw_00000000000000000018",
		"gw_00000000000000000019",
	}
	for i, k := range keys {
		tree.Insert(k, []byte{byte(i)})
	}
	root := tree.Root()

	data, err := tree.WitnessRange(keys[1], keys[2])
	require.NoError(t, err)

	node, err := DecodeWitness(data)
	require.NoError(t, err)
	assert.Equal(t, root, node.LabelledRoot(DefaultLabel))

	for _, k := range keys[1:3] {
		_, found := node.Lookup(k)
		assert.True(t, found, "expected %s revealed in range witness", k)
	}
	for _, k := range []string{keys[0], keys[3]} {
		_, found := node.Lookup(k)
		assert.False(t, found, "did not expect %s revealed outside range", k)
	}
}

func TestWitnessSingleExclusion(t *testing.T) {
	tree := New("")
	tree.Insert("gw_00000000000000000016", []byte("a"))
	tree.Insert("gw_00000000000000000020", []byte("b"))
	root := tree.Root()

	data, err := tree.WitnessSingle("gw_00000000000000000018")
	require.NoError(t, err)

	node, err := DecodeWitness(data)
	require.NoError(t, err)
	assert.Equal(t, root, node.LabelledRoot(DefaultLabel))

	_, found := node.Lookup("gw_00000000000000000018")
	assert.False(t, found)
}

func TestDeleteRemovesFromRoot(t *testing.T) {
	tree := New("")
	tree.Insert("a", []byte("1"))
	withA := tree.Root()

	tree.Insert("b", []byte("2"))
	tree.Delete("b")
	afterDelete := tree.Root()

	assert.Equal(t, withA, afterDelete)
}

func TestInsertOverwritesDigest(t *testing.T) {
	tree := New("")
	tree.Insert("a", []byte("1"))
	first := tree.Root()
	tree.Insert("a", []byte("2"))
	second := tree.Root()
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, tree.Len())
}
