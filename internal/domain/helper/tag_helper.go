package helper

import (
	"strconv"
	"strings"
)

// metricSuffixes 数値タグから取り除く単位サフィックス（長い順に試す）
var metricSuffixes = []string{"meters", "meter", "metre", "m"}

// ParseMetricTag "12", "12.5 m", "12,5" のような数値タグを防御的にパースする
// パースできない場合はnilを返し、エラーにはしない
func ParseMetricTag(value string) *float64 {
	s := strings.TrimSpace(strings.ToLower(value))
	if s == "" {
		return nil
	}
	for _, suffix := range metricSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	// カンマ小数点（インバリアントカルチャ以外の表記）を許容する
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseIntTag "3", " 2 " のような整数タグを防御的にパースする
// パースできない場合はnilを返す
func ParseIntTag(value string) *int {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// "2.0" のような小数表記の階数も許容する
		f, ferr := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if ferr != nil {
			return nil
		}
		n := int(f)
		return &n
	}
	return &v
}
