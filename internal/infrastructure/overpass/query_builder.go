package overpass

import (
	"fmt"
	"strings"

	"CityScape3D/internal/domain/model"
)

// DefaultQueryTimeoutSec Overpassクエリ自体のtimeout指定（秒）
const DefaultQueryTimeoutSec = 25

// QueryBuilder 境界ボックスとフィルタからOverpass QLクエリを組み立てる
type QueryBuilder struct {
	TimeoutSec int
}

// NewQueryBuilder 新しいQueryBuilderインスタンスを作成
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{TimeoutSec: DefaultQueryTimeoutSec}
}

// Build 有効な地物クラスごとの述語節を含むクエリ文字列を生成する
// 道路トグルが全てfalseの場合はhighway節を出力せず、エラーにはしない
// （道路要素を返さないクエリに退化する）
func (q *QueryBuilder) Build(bbox model.GeoBoundingBox, filter model.FeatureFilter) string {
	bboxFrag := fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)", bbox.South, bbox.West, bbox.North, bbox.East)

	var clauses []string
	add := func(clause string) {
		clauses = append(clauses, "  "+clause+bboxFrag+";")
	}

	if filter.Buildings {
		add(`way["building"]`)
	}
	if filter.Streets {
		if enabled := filter.EnabledHighways(); len(enabled) > 0 {
			add(fmt.Sprintf(`way["highway"~"^(%s)$"]`, strings.Join(enabled, "|")))
		}
	}
	if filter.Parks {
		add(`way["leisure"~"^(park|garden)$"]`)
	}
	if filter.Water {
		add(`way["natural"="water"]`)
		add(`way["waterway"]`)
	}
	if filter.Railways {
		add(`way["railway"]`)
	}
	if filter.Landuse {
		add(`way["landuse"]`)
	}
	if filter.Amenities {
		add(`way["amenity"]`)
		add(`node["amenity"]`)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n(\n", q.TimeoutSec)
	sb.WriteString(strings.Join(clauses, "\n"))
	sb.WriteString("\n);\nout body;\n>;\nout skel qt;")
	return sb.String()
}
