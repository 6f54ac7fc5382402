package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lime-pipeline/limenaming/internal/config"
	"github.com/lime-pipeline/limenaming/internal/domain"
)

func allScopes() config.EffectiveConfig {
	return config.EffectiveConfig{
		ScopeObjects:     true,
		ScopeMaterials:   true,
		ScopeCollections: true,
	}
}

func demoTree() *TreeInput {
	return &TreeInput{Name: "Scene", Children: []*TreeInput{
		{Name: "Assets", Children: []*TreeInput{
			{Name: "Props"},
		}},
	}}
}

func TestSessionExecutePipeline(t *testing.T) {
	s, err := NewSession(allScopes(), nil)
	require.NoError(t, err)

	in := BatchInput{
		Items: []ItemInput{
			{ID: "c1", Kind: "collection", ExistingName: "props"},
			{ID: "m1", Kind: "material", ExistingName: "Metal.001",
				TextureBasenames: []string{"metal_rusty_basecolor.png"}},
			{ID: "o1", Kind: "object", ExistingName: "chair old"},
		},
		Proposals: []ProposalInput{
			{ID: "c1", Name: "Props"},
			{ID: "m1", Name: "MAT_Metal_Rusty_V01"},
			{ID: "o1", Name: "wooden chair", PathHint: "Scene/Assets/Props"},
		},
		Tree: demoTree(),
	}

	rr := s.Execute(in, nil)
	require.Len(t, rr.Items, 3)

	// Finalize 按 id 排序：c1 < m1 < o1。
	c1, m1, o1 := rr.Items[0], rr.Items[1], rr.Items[2]

	require.Equal(t, domain.StatusAccepted, c1.Status)
	require.Equal(t, "Scene/Assets/Props", c1.TargetPath)

	require.Equal(t, domain.StatusAccepted, m1.Status)
	require.Equal(t, "MAT_Metal_Rusty_V01", m1.ResolvedName)
	require.Contains(t, m1.Reason, "现有名质量")

	require.Equal(t, domain.StatusNormalized, o1.Status)
	require.Equal(t, "Wooden_Chair", o1.ResolvedName)
	require.Equal(t, "Scene/Assets/Props", o1.TargetPath)

	require.Equal(t, 2, rr.Summary.Accepted)
	require.Equal(t, 1, rr.Summary.Normalized)
}

func TestSessionRejectsIncompleteBatch(t *testing.T) {
	s, err := NewSession(allScopes(), nil)
	require.NoError(t, err)

	in := BatchInput{
		Items: []ItemInput{
			{ID: "m1", Kind: "material", ExistingName: "x"},
			{ID: "m2", Kind: "material", ExistingName: "y"},
		},
		Proposals: []ProposalInput{
			{ID: "m1", Name: "MAT_Metal_Rusty_V01"},
			// m2 缺失
		},
	}

	rr := s.Execute(in, nil)
	require.Len(t, rr.Items, 2)
	for _, it := range rr.Items {
		require.Equal(t, domain.StatusFailed, it.Status)
		require.Equal(t, domain.ErrCodeBatchRejected, it.ErrorCode)
		require.Contains(t, it.ErrorMsg, "m2")
	}
	require.Equal(t, 2, rr.Summary.Failed)
}

func TestSessionHonorsApplyScope(t *testing.T) {
	eff := allScopes()
	eff.ScopeMaterials = false
	s, err := NewSession(eff, nil)
	require.NoError(t, err)

	in := BatchInput{
		Items:     []ItemInput{{ID: "m1", Kind: "material", ExistingName: "x"}},
		Proposals: []ProposalInput{{ID: "m1", Name: "MAT_Metal_Rusty_V01"}},
	}

	rr := s.Execute(in, nil)
	require.Len(t, rr.Items, 1)
	require.Equal(t, domain.StatusSkipped, rr.Items[0].Status)
}

func TestSessionAmbiguousPathGoesToReview(t *testing.T) {
	s, err := NewSession(allScopes(), nil)
	require.NoError(t, err)

	tree := &TreeInput{Name: "Scene", Children: []*TreeInput{
		{Name: "A", Children: []*TreeInput{{Name: "Props"}}},
		{Name: "B", Children: []*TreeInput{{Name: "Props"}}},
	}}
	in := BatchInput{
		Items:     []ItemInput{{ID: "c1", Kind: "collection", ExistingName: "props"}},
		Proposals: []ProposalInput{{ID: "c1", Name: "Props"}},
		Tree:      tree,
	}

	rr := s.Execute(in, nil)
	require.Len(t, rr.Items, 1)
	require.Equal(t, domain.StatusReview, rr.Items[0].Status)
	require.Equal(t, []string{"Scene/A/Props", "Scene/B/Props"}, rr.Items[0].Candidates)
}

type captureObserver struct {
	started bool
	phases  []string
	items   int
}

func (c *captureObserver) OnStart(config.EffectiveConfig) { c.started = true }
func (c *captureObserver) OnPhaseDone(name string, _ map[string]any, _ time.Duration) {
	c.phases = append(c.phases, name)
}
func (c *captureObserver) OnItemDone(_, _ int, _ domain.ItemID, _ domain.ItemResult, _ time.Duration) {
	c.items++
}

func TestSessionObserverEvents(t *testing.T) {
	s, err := NewSession(allScopes(), nil)
	require.NoError(t, err)

	obs := &captureObserver{}
	in := BatchInput{
		Items:     []ItemInput{{ID: "m1", Kind: "material", ExistingName: "x"}},
		Proposals: []ProposalInput{{ID: "m1", Name: "MAT_Metal_Rusty_V01"}},
	}
	_ = s.Execute(in, obs)

	require.True(t, obs.started)
	require.Equal(t, []string{"validate", "decide"}, obs.phases)
	require.Equal(t, 1, obs.items)
}
