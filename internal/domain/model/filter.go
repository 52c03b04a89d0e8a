package model

import (
	"fmt"
	"sort"
	"strings"
)

// FeatureFilter 取得対象の地物クラスを選択する名前付きブールトグルの集合
// Highwaysは道路種別ごとの個別トグル。全てfalseでもエラーにはならず、
// 道路を返さないクエリに退化する
type FeatureFilter struct {
	Buildings bool            `json:"buildings"`
	Streets   bool            `json:"streets"`
	Parks     bool            `json:"parks"`
	Water     bool            `json:"water"`
	Railways  bool            `json:"railways"`
	Landuse   bool            `json:"landuse"`
	Amenities bool            `json:"amenities"`
	Highways  map[string]bool `json:"highways,omitempty"`
}

// DefaultFeatureFilter 全クラス有効のフィルタを作成する
func DefaultFeatureFilter() FeatureFilter {
	highways := make(map[string]bool, len(DefaultHighwayClasses))
	for _, h := range DefaultHighwayClasses {
		highways[h] = true
	}
	return FeatureFilter{
		Buildings: true,
		Streets:   true,
		Parks:     true,
		Water:     true,
		Railways:  true,
		Landuse:   true,
		Amenities: true,
		Highways:  highways,
	}
}

// EnabledHighways 有効なhighway種別を決定的な順序（ソート済み）で返す
func (f FeatureFilter) EnabledHighways() []string {
	var enabled []string
	for class, on := range f.Highways {
		if on {
			enabled = append(enabled, class)
		}
	}
	sort.Strings(enabled)
	return enabled
}

// AnyEnabled いずれかの地物クラスが有効か
func (f FeatureFilter) AnyEnabled() bool {
	return f.Buildings || f.Streets || f.Parks || f.Water || f.Railways || f.Landuse || f.Amenities
}

// CacheFragment キャッシュキーに使用する正規化されたトグル文字列を返す
func (f FeatureFilter) CacheFragment() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "b%t_s%t_p%t_w%t_r%t_l%t_a%t",
		f.Buildings, f.Streets, f.Parks, f.Water, f.Railways, f.Landuse, f.Amenities)
	if f.Streets {
		sb.WriteString("_h:")
		sb.WriteString(strings.Join(f.EnabledHighways(), ","))
	}
	return sb.String()
}
