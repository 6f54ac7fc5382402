// Package taxonomy 维护材质类型/finish 的固定词汇索引。
//
// 索引在会话开始时加载一次，之后只读（多读者并发安全，无锁）。
// 相似度查询要么给出超过阈值的匹配，要么明确说没有——绝不返回低置信度的猜测。
package taxonomy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

// Pool 指定 FindClosest 在哪个候选池里找。
type Pool int

const (
	PoolType Pool = iota
	PoolFinish
)

// Thresholds 是相似度阈值（可调参数，不允许在调用点硬编码）。
type Thresholds struct {
	// MinType/MinFinish 低于该值时 ClosestType/ClosestFinish 返回"无匹配"。
	MinType   float64
	MinFinish float64
}

// DefaultThresholds 是经验默认值（设计留给带标注语料做校准）。
// 0.6 在归一化编辑距离下能覆盖 Rustic→Rusty 这类常见笔误（0.67）。
var DefaultThresholds = Thresholds{MinType: 0.6, MinFinish: 0.6}

// Entry 是一个材质类型词条：规范类型名、它的别名、以及已知的 finish 词。
type Entry struct {
	Type     domain.MaterialType
	Aliases  []string
	Finishes []string
}

// Index 是加载后的只读索引。用显式传引用的方式在各层流动，不做隐藏单例。
type Index struct {
	entries    []Entry
	thresholds Thresholds

	typeByAlias   map[string]int // 小写类型名/别名 → entries 下标
	finishByAlias map[string]string
	finishCanon   []string
}

// New 从词条表构建索引。词条在这里做一次性规范化，之后不再变。
func New(entries []Entry, th Thresholds) *Index {
	idx := &Index{
		entries:       append([]Entry(nil), entries...),
		thresholds:    th,
		typeByAlias:   make(map[string]int, len(entries)*2),
		finishByAlias: make(map[string]string, len(entries)*4),
	}
	seenFinish := map[string]struct{}{}
	for i, e := range idx.entries {
		idx.typeByAlias[strings.ToLower(string(e.Type))] = i
		for _, a := range e.Aliases {
			idx.typeByAlias[strings.ToLower(a)] = i
		}
		for _, f := range e.Finishes {
			low := strings.ToLower(f)
			if _, dup := seenFinish[low]; !dup {
				seenFinish[low] = struct{}{}
				idx.finishCanon = append(idx.finishCanon, f)
			}
			idx.finishByAlias[low] = f
		}
	}
	sort.Strings(idx.finishCanon)
	return idx
}

// Thresholds 暴露当前阈值（只读）。
func (x *Index) Thresholds() Thresholds { return x.thresholds }

// Entries 返回词条副本。
func (x *Index) Entries() []Entry {
	return append([]Entry(nil), x.entries...)
}

// HasType 做精确/别名（大小写不敏感）类型成员判断。
func (x *Index) HasType(term string) (domain.MaterialType, bool) {
	i, ok := x.typeByAlias[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return "", false
	}
	return x.entries[i].Type, true
}

// HasFinishForType 判断 finish 是否是该类型的已知词（精确，大小写不敏感）。
func (x *Index) HasFinishForType(t domain.MaterialType, finish string) (string, bool) {
	i, ok := x.typeByAlias[strings.ToLower(string(t))]
	if !ok {
		return "", false
	}
	low := strings.ToLower(strings.TrimSpace(finish))
	for _, f := range x.entries[i].Finishes {
		if strings.ToLower(f) == low {
			return f, true
		}
	}
	return "", false
}

// HasFinish 做跨类型的全局 finish 成员判断。
func (x *Index) HasFinish(term string) (string, bool) {
	f, ok := x.finishByAlias[strings.ToLower(strings.TrimSpace(term))]
	return f, ok
}

// ClosestType 找最近的类型词条。
// 相同输入永远得到相同输出；并列时取字典序靠前的词条（稳定）。
func (x *Index) ClosestType(term string) (domain.MaterialType, float64, bool) {
	if t, ok := x.HasType(term); ok {
		return t, 1.0, true
	}
	best := ""
	bestSim := 0.0
	for alias := range x.typeByAlias {
		sim := Similarity(term, alias)
		canon := string(x.entries[x.typeByAlias[alias]].Type)
		if sim > bestSim || (sim == bestSim && canon < best) {
			bestSim = sim
			best = canon
		}
	}
	if best == "" || bestSim < x.thresholds.MinType {
		return "", 0, false
	}
	return domain.MaterialType(best), bestSim, true
}

// ClosestFinish 找最近的 finish 词。规则同 ClosestType。
func (x *Index) ClosestFinish(term string) (string, float64, bool) {
	if f, ok := x.HasFinish(term); ok {
		return f, 1.0, true
	}
	best := ""
	bestSim := 0.0
	for _, canon := range x.finishCanon {
		sim := Similarity(term, canon)
		if sim > bestSim {
			bestSim = sim
			best = canon
		}
	}
	if best == "" || bestSim < x.thresholds.MinFinish {
		return "", 0, false
	}
	return best, bestSim, true
}

// FindClosest 是统一入口（TYPE/FINISH 两个池）。
func (x *Index) FindClosest(term string, pool Pool) (string, float64, bool) {
	switch pool {
	case PoolType:
		t, sim, ok := x.ClosestType(term)
		return string(t), sim, ok
	case PoolFinish:
		return x.ClosestFinish(term)
	default:
		return "", 0, false
	}
}

// Similarity 是归一化编辑距离相似度（0–1，大小写不敏感）。
// 对称且确定：批处理里调用顺序不影响结果。
func Similarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	if la == "" || lb == "" {
		return 0
	}
	maxLen := len([]rune(la))
	if n := len([]rune(lb)); n > maxLen {
		maxLen = n
	}
	d := levenshtein.ComputeDistance(la, lb)
	sim := 1.0 - float64(d)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}
