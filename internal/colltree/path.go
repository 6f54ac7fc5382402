package colltree

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/normalize"
)

var (
	shotRootRE  = regexp.MustCompile(`^SHOT \d{2,3}$`)
	shotChildRE = regexp.MustCompile(`^SH\d{2,3}_`)
	spaceRE     = regexp.MustCompile(`\s+`)
)

// IsShotName 判断名字是否属于 SHOT 分支（根 "SHOT 10" 或子层 "SH10_..."）。
func IsShotName(name string) bool {
	n := strings.TrimSpace(name)
	return shotRootRE.MatchString(n) || shotChildRE.MatchString(n)
}

// CanonicalNameKey 把容器名收敛为匹配键：去首尾空白、压空白、转小写。
// 仅差大小写或附带空白的名字必须命中同一个键，否则会因为写法差异长出重复分支。
func CanonicalNameKey(name string) string {
	return strings.ToLower(spaceRE.ReplaceAllString(strings.TrimSpace(name), " "))
}

// CanonicalPathKey 把斜杠分隔的路径收敛为路径键。
// 段先走资产名归一；归一后为空或属于 SHOT 分支的段丢弃（SHOT 段由场景结构管理，
// 不参与语义路径比较）。
func CanonicalPathKey(path string) string {
	var parts []string
	for _, seg := range strings.Split(path, "/") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		if IsShotName(seg) {
			continue
		}
		n := normalize.NormalizeAssetName(seg, "")
		if n == "" || !normalize.IsValidAssetName(n) {
			continue
		}
		parts = append(parts, strings.ToLower(n))
	}
	return strings.Join(parts, "/")
}

// MissingSegments 给出为覆盖 targets 需要新建的路径集合（含所有中间层）。
// 目标先按深度再按字典序排，保证父层总在子层之前出现；结果顺序即创建顺序。
// 这里只做规划，真正建容器是调用方的事。
func MissingSegments(targets, existing []string) []string {
	available := map[string]struct{}{}
	for _, p := range existing {
		if strings.TrimSpace(p) != "" {
			available[p] = struct{}{}
		}
	}

	uniq := map[string]struct{}{}
	for _, p := range targets {
		if strings.TrimSpace(p) != "" {
			uniq[p] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(uniq))
	for p := range uniq {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		di := strings.Count(ordered[i], "/")
		dj := strings.Count(ordered[j], "/")
		if di != dj {
			return di < dj
		}
		return ordered[i] < ordered[j]
	})

	var missing []string
	for _, target := range ordered {
		current := ""
		for _, seg := range strings.Split(target, "/") {
			if seg == "" {
				continue
			}
			if current == "" {
				current = seg
			} else {
				current = current + "/" + seg
			}
			if _, ok := available[current]; ok {
				continue
			}
			available[current] = struct{}{}
			missing = append(missing, current)
		}
	}
	return missing
}

// ReplacePathPrefix 把路径的前缀从 old 换成 new（前缀比较大小写不敏感，
// 替换后保留原有后缀的写法）。不匹配时原样返回。
func ReplacePathPrefix(path, oldPrefix, newPrefix string) string {
	v := strings.TrimSpace(path)
	old := strings.TrimSpace(oldPrefix)
	next := strings.TrimSpace(newPrefix)
	if v == "" || old == "" || next == "" {
		return v
	}
	if strings.EqualFold(v, old) {
		return next
	}
	if len(v) > len(old)+1 && strings.EqualFold(v[:len(old)+1], old+"/") {
		return next + "/" + v[len(old)+1:]
	}
	return v
}
