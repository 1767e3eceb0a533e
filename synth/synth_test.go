package synth

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDepthOne(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		tr, err := Generate(rand.New(rand.NewSource(seed)), 1)
		require.NoError(t, err)
		require.Equal(t, 3, tr.Len())

		root, err := tr.Root()
		require.NoError(t, err)
		require.True(t, root.Split.Continuous())
		assert.GreaterOrEqual(t, root.Split.Threshold, 0.0)
		assert.LessOrEqual(t, root.Split.Threshold, 1.0)
		require.Len(t, root.Branches, 2)
		assert.Equal(t, tree.LowBranch, root.Branches[0].Key)
		assert.Equal(t, tree.HighBranch, root.Branches[1].Key)

		low, err := tr.Get(root.Branches[0].Child)
		require.NoError(t, err)
		high, err := tr.Get(root.Branches[1].Child)
		require.NoError(t, err)
		require.True(t, low.IsLeaf())
		require.True(t, high.IsLeaf())

		pl, ph := low.Prediction.Probabilities(), high.Prediction.Probabilities()
		assert.Len(t, pl, 2)
		assert.Len(t, ph, 2)
		assert.ElementsMatch(t, []map[string]float64{
			{Positive: 1, Negative: 0},
			{Negative: 1, Positive: 0},
		}, []map[string]float64{pl, ph})
	}
}

func TestGenerateDepthAndAlternation(t *testing.T) {
	tr, err := Generate(rand.New(rand.NewSource(7)), 4)
	require.NoError(t, err)
	assert.Equal(t, 31, tr.Len())

	depths := map[tree.NodeID]int{}
	err = tr.Traverse(context.Background(), false, func(_ context.Context, n *tree.Node) error {
		d := 0
		if n.ParentID != tree.NoNode {
			d = depths[n.ParentID] + 1
			parent, err := tr.Get(n.ParentID)
			require.NoError(t, err)
			if !n.IsLeaf() {
				assert.NotEqual(t, parent.Split.Feature, n.Split.Feature)
			}
		}
		depths[n.ID] = d
		if n.IsLeaf() {
			assert.Equal(t, 4, d)
		} else {
			assert.Less(t, d, 4)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGenerateThresholdsStayInRange(t *testing.T) {
	tr, err := Generate(rand.New(rand.NewSource(3)), 3)
	require.NoError(t, err)
	root, _ := tr.Root()
	for _, b := range root.Branches {
		child, err := tr.Get(b.Child)
		require.NoError(t, err)
		for _, gb := range child.Branches {
			grandchild, err := tr.Get(gb.Child)
			require.NoError(t, err)
			if grandchild.IsLeaf() {
				continue
			}
			assert.Equal(t, root.Split.Feature, grandchild.Split.Feature)
			if b.Key == tree.LowBranch {
				assert.LessOrEqual(t, grandchild.Split.Threshold, root.Split.Threshold)
			} else {
				assert.GreaterOrEqual(t, grandchild.Split.Threshold, root.Split.Threshold)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(rand.New(rand.NewSource(11)), 3)
	require.NoError(t, err)
	b, err := Generate(rand.New(rand.NewSource(11)), 3)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerateInvalidDepth(t *testing.T) {
	_, err := Generate(rand.New(rand.NewSource(1)), 0)
	assert.True(t, errors.Is(err, ErrInvalidDepth))
}

func TestDataset(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	tr, err := Generate(rng, 2)
	require.NoError(t, err)
	ds, err := Dataset(rng, tr, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, ds.Count())
	for _, s := range ds.Samples() {
		l, err := dataset.Label(s, LabelFeature)
		require.NoError(t, err)
		p, err := tr.Predict(s)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p.ProbabilityOf(l))
	}
}

func TestLabelFile(t *testing.T) {
	tr, err := Generate(rand.New(rand.NewSource(2)), 1)
	require.NoError(t, err)
	root, _ := tr.Root()
	name := root.Split.Feature.Name()
	low, _ := tr.Get(root.Branches[0].Child)
	lowLabel, _ := low.Prediction.PredictedValue()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("feature0,feature1\n0,0\n1,1\n"), 0o600))
	require.NoError(t, LabelFile(tr, in, out))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "feature0,feature1,label", lines[0])
	assert.Equal(t, "0,0,"+lowLabel, lines[1], "splitting %s", name)
	assert.NotEqual(t, lines[1][4:], lines[2][4:])
}
