package matname

import (
	"github.com/lime-pipeline/limenaming/internal/domain"
)

// UsedVersions 扫描名字全集，收集某语义键已占用的版本号。
// 解析失败的名字直接跳过（它们不占任何版本槽位）。
func UsedVersions(universe []string, key domain.MaterialKey) map[int]struct{} {
	used := make(map[int]struct{}, 8)
	for _, name := range universe {
		rec, fail := Decode(name)
		if fail != nil {
			continue
		}
		if rec.Key() == key {
			used[rec.Version] = struct{}{}
		}
	}
	return used
}

// LowestFreeVersion 返回 ≥ atLeast 的最小空闲版本。
// 版本只增不减：atLeast 由调用方用现有版本兜底，这里绝不往回走。
func LowestFreeVersion(universe []string, key domain.MaterialKey, atLeast int) int {
	if atLeast < 1 {
		atLeast = 1
	}
	used := UsedVersions(universe, key)
	v := atLeast
	for {
		if _, taken := used[v]; !taken {
			return v
		}
		v++
	}
}

// BumpUntilUnique 通过递增版本块保证名字在全集内唯一。
// 名字本身不在全集内时原样返回（不做多余改写）。
func BumpUntilUnique(universe []string, name string) string {
	inUse := make(map[string]struct{}, len(universe))
	for _, n := range universe {
		inUse[n] = struct{}{}
	}
	if _, taken := inUse[name]; !taken {
		return name
	}

	rec, fail := Decode(name)
	if fail != nil {
		return name
	}
	for v := rec.Version + 1; v <= maxVersion; v++ {
		rec.Version = v
		cand := Encode(rec)
		if _, taken := inUse[cand]; !taken {
			return cand
		}
	}
	return name
}
