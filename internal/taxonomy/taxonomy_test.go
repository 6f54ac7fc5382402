package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	return New([]Entry{
		{Type: "Metal", Aliases: []string{"Steel", "Alu"}, Finishes: []string{"Rusty", "Brushed", "Polished"}},
		{Type: "Wood", Finishes: []string{"Polished", "Glossy", "Oak"}},
	}, DefaultThresholds)
}

func TestHasType_AliasInsensitive(t *testing.T) {
	idx := testIndex(t)

	mt, ok := idx.HasType("steel")
	require.True(t, ok)
	assert.Equal(t, domain.MaterialType("Metal"), mt)

	_, ok = idx.HasType("Adamantium")
	assert.False(t, ok)
}

func TestClosestType_Threshold(t *testing.T) {
	idx := testIndex(t)

	mt, sim, ok := idx.ClosestType("Metl")
	require.True(t, ok)
	assert.Equal(t, domain.MaterialType("Metal"), mt)
	assert.Greater(t, sim, 0.75)

	// 没有任何候选过阈值时必须返回"无匹配"，而不是低置信度的猜测。
	_, _, ok = idx.ClosestType("Zzzzzz")
	assert.False(t, ok)
}

func TestClosestFinish_ExactBeforeFuzzy(t *testing.T) {
	idx := testIndex(t)

	f, sim, ok := idx.ClosestFinish("rusty")
	require.True(t, ok)
	assert.Equal(t, "Rusty", f)
	assert.Equal(t, 1.0, sim)

	f, sim, ok = idx.ClosestFinish("Rustic")
	require.True(t, ok)
	assert.Equal(t, "Rusty", f)
	assert.Less(t, sim, 1.0)
}

func TestClosestFinish_Deterministic(t *testing.T) {
	idx := testIndex(t)
	f1, s1, ok1 := idx.ClosestFinish("Polishd")
	for i := 0; i < 10; i++ {
		f2, s2, ok2 := idx.ClosestFinish("Polishd")
		require.Equal(t, ok1, ok2)
		require.Equal(t, f1, f2)
		require.Equal(t, s1, s2)
	}
}

func TestHasFinishForType(t *testing.T) {
	idx := testIndex(t)

	f, ok := idx.HasFinishForType("Metal", "rusty")
	require.True(t, ok)
	assert.Equal(t, "Rusty", f)

	_, ok = idx.HasFinishForType("Metal", "Oak")
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Rusty", "rusty"))
	assert.Equal(t, 0.0, Similarity("", "Rusty"))
	// 对称性。
	assert.Equal(t, Similarity("Rustic", "Rusty"), Similarity("Rusty", "Rustic"))
}

func TestParse_Document(t *testing.T) {
	doc := []byte(`
types:
  - type: Metal
    aliases_for_type: [Steel]
    known_finishes: [Rusty, Brushed]
  - type: Wood
    known_finishes: [Oak]
similarity:
  min_type: 0.8
  min_finish: 0.7
`)
	idx, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, 0.8, idx.Thresholds().MinType)
	assert.Equal(t, 0.7, idx.Thresholds().MinFinish)

	mt, ok := idx.HasType("Steel")
	require.True(t, ok)
	assert.Equal(t, domain.MaterialType("Metal"), mt)
}

func TestParse_RejectsUnknownType(t *testing.T) {
	doc := []byte(`
types:
  - type: Adamantium
    known_finishes: [Shiny]
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalid, ErrCode(err))
}

func TestParse_RejectsEmptyAndBadThreshold(t *testing.T) {
	_, err := Parse([]byte(`types: []`))
	assert.Equal(t, ErrCodeInvalid, ErrCode(err))

	_, err = Parse([]byte(`
types:
  - type: Metal
similarity:
  min_type: 1.5
`))
	assert.Equal(t, ErrCodeInvalid, ErrCode(err))
}
