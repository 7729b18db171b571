package models

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/demandcast/demandcast/pkg/accuracy"
)

const (
	rfSeed          = 42
	rfMinSplit      = 2
	rfForecastTrees = 100
)

// Search grids for the forest configuration. A depth of 0 means unlimited.
var (
	rfEstimatorCounts = []int{50, 100}
	rfMaxDepths       = []int{0, 5, 10}
)

type rfCandidate struct {
	trees    int
	maxDepth int
}

// RandomForestModel fits an ensemble of regression trees over calendar
// features derived from the observation index: the index itself, a month
// slot in 1..12, and a quarter slot in 1..4.
//
// Fit tries every combination of tree count {50, 100} and maximum depth
// {unlimited, 5, 10} and keeps the one with the lowest defined MAPE. Each
// candidate is trained from a fixed seed so repeated fits of the same series
// give identical results. Trees are grown on bootstrap samples with greedy
// variance-minimizing splits over midpoint thresholds, splitting down to
// nodes of two samples unless the depth cap stops them first.
//
// Project trains a fresh 100-tree unlimited-depth forest on the full history
// and predicts the feature rows of the future indices. Tree predictions
// cannot leave the range of observed values, so projections flatten out
// beyond the trend seen in training.
type RandomForestModel struct{}

// NewRandomForestModel creates a random forest model.
func NewRandomForestModel() *RandomForestModel {
	return &RandomForestModel{}
}

// Name returns the family display name.
func (m *RandomForestModel) Name() string {
	return FamilyForest
}

// Fit searches the configuration grid and returns the best forest's
// in-sample predictions.
func (m *RandomForestModel) Fit(ctx context.Context, series []float64) (*FitResult, error) {
	if err := rfValidate(series); err != nil {
		return nil, err
	}

	features := demandFeatures(len(series))
	cand, res, err := m.searchConfig(ctx, features, series)
	if err != nil {
		return nil, err
	}

	var maxDepth any = cand.maxDepth
	if cand.maxDepth == 0 {
		maxDepth = nil
	}

	return &FitResult{
		Family:      m.Name(),
		Predictions: res.predictions,
		Metrics:     res.metrics,
		Params:      Params{"n_estimators": cand.trees, "max_depth": maxDepth},
		Description: describe(m.Name()),
	}, nil
}

// Project trains the forecast configuration on the full history and predicts
// the feature rows of the horizon indices.
func (m *RandomForestModel) Project(ctx context.Context, series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := rfValidate(series); err != nil {
		return nil, err
	}

	n := len(series)
	rng := rand.New(rand.NewSource(rfSeed))
	forest := rfGrow(demandFeatures(n), series, rfForecastTrees, 0, rng)

	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = forest.predict(demandFeatureRow(n + k))
	}
	return out, nil
}

func (m *RandomForestModel) searchConfig(ctx context.Context, features [][]float64, series []float64) (rfCandidate, evalResult, error) {
	eval := func(c rfCandidate) (evalResult, error) {
		rng := rand.New(rand.NewSource(rfSeed))
		forest := rfGrow(features, series, c.trees, c.maxDepth, rng)

		predictions := make([]float64, len(series))
		for i := range predictions {
			predictions[i] = forest.predict(features[i])
		}
		metrics, err := accuracy.Calculate(series, predictions)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{predictions: predictions, metrics: metrics}, nil
	}

	cand, res, ok, err := searchBest(ctx, rfCandidates(), eval)
	if err != nil {
		return rfCandidate{}, evalResult{}, fmt.Errorf("randomforest: %w", err)
	}
	if !ok {
		return rfCandidate{}, evalResult{}, fmt.Errorf("randomforest: no configuration produced a defined accuracy score")
	}
	return cand, res, nil
}

func rfCandidates() []rfCandidate {
	out := make([]rfCandidate, 0, len(rfEstimatorCounts)*len(rfMaxDepths))
	for _, trees := range rfEstimatorCounts {
		for _, depth := range rfMaxDepths {
			out = append(out, rfCandidate{trees: trees, maxDepth: depth})
		}
	}
	return out
}

func rfValidate(series []float64) error {
	if len(series) == 0 {
		return fmt.Errorf("randomforest: empty series")
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("randomforest: non-finite value at position %d", i)
		}
	}
	return nil
}

// demandFeatureRow builds the regression features for observation index i.
// Future indices continue the same encoding past the end of the series.
func demandFeatureRow(i int) []float64 {
	return []float64{float64(i), float64(i%12 + 1), float64((i%12)/3 + 1)}
}

func demandFeatures(n int) [][]float64 {
	features := make([][]float64, n)
	for i := range features {
		features[i] = demandFeatureRow(i)
	}
	return features
}

// rfNode is a regression tree node. Interior nodes route on feature and
// threshold; leaves (left == nil) predict value.
type rfNode struct {
	feature   int
	threshold float64
	left      *rfNode
	right     *rfNode
	value     float64
}

type rfForest struct {
	trees []*rfNode
}

// rfGrow trains count trees, each on its own bootstrap sample of the rows.
func rfGrow(features [][]float64, targets []float64, count, maxDepth int, rng *rand.Rand) *rfForest {
	n := len(targets)
	forest := &rfForest{trees: make([]*rfNode, count)}
	for t := 0; t < count; t++ {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		forest.trees[t] = rfGrowTree(features, targets, indices, 0, maxDepth)
	}
	return forest
}

// predict averages the tree predictions for one feature row.
func (f *rfForest) predict(row []float64) float64 {
	var sum float64
	for _, tree := range f.trees {
		node := tree
		for node.left != nil {
			if row[node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		sum += node.value
	}
	return sum / float64(len(f.trees))
}

// rfGrowTree builds a tree greedily. A node becomes a leaf when it is too
// small to split, the depth cap is reached, it is already pure, or no
// feature offers a usable threshold.
func rfGrowTree(features [][]float64, targets []float64, indices []int, depth, maxDepth int) *rfNode {
	node := &rfNode{value: rfMeanAt(targets, indices)}

	if len(indices) < rfMinSplit {
		return node
	}
	if maxDepth > 0 && depth >= maxDepth {
		return node
	}
	if rfSSEAt(targets, indices) == 0 {
		return node
	}

	split, ok := rfBestSplit(features, targets, indices)
	if !ok {
		return node
	}

	node.feature = split.feature
	node.threshold = split.threshold
	node.left = rfGrowTree(features, targets, split.left, depth+1, maxDepth)
	node.right = rfGrowTree(features, targets, split.right, depth+1, maxDepth)
	return node
}

type rfSplit struct {
	feature   int
	threshold float64
	left      []int
	right     []int
}

// rfBestSplit scans every feature and every midpoint between consecutive
// distinct values, keeping the split with the lowest summed squared error of
// the two sides. ok=false when all features are constant across the node.
func rfBestSplit(features [][]float64, targets []float64, indices []int) (rfSplit, bool) {
	var best rfSplit
	bestSSE := math.Inf(1)
	found := false

	values := make([]float64, len(indices))
	for f := 0; f < len(features[0]); f++ {
		for i, idx := range indices {
			values[i] = features[idx][f]
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			var left, right []int
			for _, idx := range indices {
				if features[idx][f] <= threshold {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}

			sse := rfSSEAt(targets, left) + rfSSEAt(targets, right)
			if sse < bestSSE {
				bestSSE = sse
				best = rfSplit{feature: f, threshold: threshold, left: left, right: right}
				found = true
			}
		}
	}
	return best, found
}

func rfMeanAt(targets []float64, indices []int) float64 {
	var sum float64
	for _, idx := range indices {
		sum += targets[idx]
	}
	return sum / float64(len(indices))
}

func rfSSEAt(targets []float64, indices []int) float64 {
	m := rfMeanAt(targets, indices)
	var sse float64
	for _, idx := range indices {
		d := targets[idx] - m
		sse += d * d
	}
	return sse
}
