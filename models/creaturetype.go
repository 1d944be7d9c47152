package models

import (
	"strings"

	"gorm.io/gorm"
)

// レアリティの定義。出現率テーブルはこの順序で走査されます。
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// CreatureType モデルの定義。クリーチャー図鑑の静的マスターデータ。
type CreatureType struct {
	gorm.Model
	Name             string `gorm:"unique;not null"`          // クリーチャー名
	Rarity           string `gorm:"index;not null"`           // common, uncommon, rare, epic, legendary
	RegionLocked     bool   `gorm:"not null;default:false"`   // 地域限定フラグ
	AllowedCountries string `gorm:"default:''"`               // 地域限定の場合の許可国コード（カンマ区切り、例: "JP,KR"）
	BaseWeight       int    `gorm:"not null;default:1"`       // 基本出現ウェイト
}

// AllowsCountry は地域限定クリーチャーが指定の国コードで出現可能かを判定します。
// 地域限定でないクリーチャーは常にtrueを返します。
func (ct *CreatureType) AllowsCountry(countryCode string) bool {
	if !ct.RegionLocked {
		return true
	}
	if countryCode == "" {
		return false
	}
	for _, code := range strings.Split(ct.AllowedCountries, ",") {
		if strings.TrimSpace(code) == countryCode {
			return true
		}
	}
	return false
}
