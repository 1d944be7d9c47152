package spawning

import (
	"math/rand"
	"testing"

	"critterserver/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCandidatesDistanceBand(t *testing.T) {
	// 確率1.0でも全候補が[25m, 150m]の範囲内に収まる
	sel := NewSelector(rand.New(rand.NewSource(1)))
	cfg := DefaultGridConfig()
	cfg.CellProbability = 1.0

	origin := [2]float64{35.6812, 139.7671}
	candidates := GenerateCandidates(cfg, sel, origin[0], origin[1], 500, false, fullCandidateSet())
	require.NotEmpty(t, candidates)

	for _, cand := range candidates {
		dist := geo.DistanceMeters(origin[0], origin[1], cand.Latitude, cand.Longitude)
		assert.GreaterOrEqual(t, dist, float64(MinSpawnDistanceMeters))
		assert.LessOrEqual(t, dist, float64(MaxSpawnDistanceMeters))
	}
}

func TestGenerateCandidatesZeroProbability(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(2)))
	cfg := DefaultGridConfig()
	cfg.CellProbability = 0

	candidates := GenerateCandidates(cfg, sel, 0, 0, 500, false, fullCandidateSet())
	assert.Empty(t, candidates)
}

func TestGenerateCandidatesNoTypes(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewSource(3)))
	cfg := DefaultGridConfig()
	cfg.CellProbability = 1.0

	candidates := GenerateCandidates(cfg, sel, 0, 0, 500, false, nil)
	assert.Empty(t, candidates)
}

func TestGenerateCandidatesRandomCount(t *testing.T) {
	// セルごとの独立ベルヌーイ試行なので生成数は呼び出しごとに変動し、0にもなり得る
	sel := NewSelector(rand.New(rand.NewSource(4)))
	cfg := DefaultGridConfig()

	counts := make(map[int]bool)
	for i := 0; i < 50; i++ {
		candidates := GenerateCandidates(cfg, sel, 0, 0, 500, false, fullCandidateSet())
		counts[len(candidates)] = true
	}
	assert.Greater(t, len(counts), 1, "生成数が毎回同じになることはない")
}

func TestGenerateCandidatesParkBoost(t *testing.T) {
	// 公園ブーストでセル確率が2.5倍になり平均生成数が増える
	sel := NewSelector(rand.New(rand.NewSource(5)))
	cfg := DefaultGridConfig()

	const runs = 200
	totalBase, totalBoosted := 0, 0
	for i := 0; i < runs; i++ {
		totalBase += len(GenerateCandidates(cfg, sel, 0, 0, 500, false, fullCandidateSet()))
		totalBoosted += len(GenerateCandidates(cfg, sel, 0, 0, 500, true, fullCandidateSet()))
	}
	assert.Greater(t, totalBoosted, totalBase)
}
