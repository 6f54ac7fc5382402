package reconcile

import (
	"sort"

	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/matname"
)

// VersionGaps 扫描名字全集，报告每个语义键版本序列里的空洞
// （如 V01/V03 在而 V02 不在）。只报告，不自动填：空洞可能是有意废弃的版本。
// 解析失败的名字不参与；无空洞的键不出现在结果里。
func VersionGaps(universe []string) map[domain.MaterialKey][]int {
	byKey := map[domain.MaterialKey]map[int]struct{}{}
	for _, name := range universe {
		rec, fail := matname.Decode(name)
		if fail != nil {
			continue
		}
		k := rec.Key()
		if byKey[k] == nil {
			byKey[k] = map[int]struct{}{}
		}
		byKey[k][rec.Version] = struct{}{}
	}

	out := map[domain.MaterialKey][]int{}
	for k, used := range byKey {
		max := 0
		for v := range used {
			if v > max {
				max = v
			}
		}
		var gaps []int
		for v := 1; v < max; v++ {
			if _, ok := used[v]; !ok {
				gaps = append(gaps, v)
			}
		}
		if len(gaps) > 0 {
			sort.Ints(gaps)
			out[k] = gaps
		}
	}
	return out
}
