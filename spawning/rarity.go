package spawning

import (
	"math/rand"
	"time"

	"critterserver/models"
)

// RarityWeight はレアリティ1段階分の出現確率です。
type RarityWeight struct {
	Rarity string
	Weight float64
}

// WeightTable はレアリティ抽選テーブルです。定義順に走査されます。
type WeightTable []RarityWeight

// 通常時の出現率テーブル
var BaseWeights = WeightTable{
	{models.RarityCommon, 0.60},
	{models.RarityUncommon, 0.25},
	{models.RarityRare, 0.10},
	{models.RarityEpic, 0.04},
	{models.RarityLegendary, 0.01},
}

// 公園ブースト時の出現率テーブル（レア以上が出やすくなる）
var ParkBoostWeights = WeightTable{
	{models.RarityCommon, 0.50},
	{models.RarityUncommon, 0.25},
	{models.RarityRare, 0.15},
	{models.RarityEpic, 0.07},
	{models.RarityLegendary, 0.03},
}

// ジムスポーン用テーブル。エピックとレジェンダリーのみ出現します。
var GymWeights = WeightTable{
	{models.RarityEpic, 0.70},
	{models.RarityLegendary, 0.30},
}

// Selector はレアリティの重み付き抽選を行います。
// テーブルと乱数源を注入できるため、テストでは決定的に動作させられます。
type Selector struct {
	base    WeightTable
	boosted WeightTable
	rng     *rand.Rand
}

// NewSelector は標準テーブルを使うSelectorを作成します。rngがnilの場合は時刻シードで初期化します。
func NewSelector(rng *rand.Rand) *Selector {
	return NewSelectorWithTables(BaseWeights, ParkBoostWeights, rng)
}

// NewSelectorWithTables はテーブルを差し替えたSelectorを作成します。
func NewSelectorWithTables(base, boosted WeightTable, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{base: base, boosted: boosted, rng: rng}
}

// Pick は候補リストから重み付きでクリーチャーを1体選びます。
// 候補が空の場合はnilを返します。
func (s *Selector) Pick(types []models.CreatureType, parkBoost bool) *models.CreatureType {
	table := s.base
	if parkBoost {
		table = s.boosted
	}
	return s.PickFromTable(types, table)
}

// PickFromTable は指定テーブルで抽選します。
// レアリティごとに候補をグループ化し、一様乱数でテーブルを累積走査して
// 候補が存在する最初のバケットからさらに一様に1体選びます。
// 候補のいないバケットはスキップされますが、その重みは再配分されません
// （空バケットがあると走査順の早いレアリティに寄る）。
// どのバケットにも当たらなかった場合は全候補から一様に選びます。
func (s *Selector) PickFromTable(types []models.CreatureType, table WeightTable) *models.CreatureType {
	if len(types) == 0 {
		return nil
	}

	// レアリティごとにグループ化
	byRarity := make(map[string][]*models.CreatureType, len(table))
	for i := range types {
		ct := &types[i]
		byRarity[ct.Rarity] = append(byRarity[ct.Rarity], ct)
	}

	roll := s.rng.Float64()
	cumulative := 0.0
	for _, rw := range table {
		cumulative += rw.Weight
		bucket := byRarity[rw.Rarity]
		if roll <= cumulative && len(bucket) > 0 {
			return bucket[s.rng.Intn(len(bucket))]
		}
	}

	// フォールバック: 全候補から一様に選ぶ
	return &types[s.rng.Intn(len(types))]
}
