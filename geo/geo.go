package geo

import (
	"errors"
	"math"
)

// 地球半径（球体近似、メートル）
const earthRadiusMeters = 6371000

// ErrInvalidCoordinate は範囲外または非有限の座標を表します。
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// DistanceMeters はハーバサイン公式で2点間の距離をメートルで計算します。
// ゲーム内で使う数十〜数千メートルのスケールで十分な精度があります。
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsValidCoordinate は緯度経度が有効な範囲内かどうかを判定します。
// NaNや無限大はここで弾き、距離計算にNaNが混入しないようにします。
func IsValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return false
	}
	return true
}
