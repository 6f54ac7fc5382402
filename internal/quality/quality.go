// Package quality 对既有材质名做启发式打分，决定要不要送去 reconcile。
//
// 打分策略是数据不是控制流：每个信号有名字、探测函数和权重，
// 可以单独测试、单独调整，不必动主流程。倾向性（刻意保留）：
// 对已经说得过去的名字宁可给 ACCEPTABLE，也不强迫改名折腾用户。
package quality

import (
	"regexp"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/matname"
	"github.com/lime-pipeline/limenaming/internal/taxonomy"
)

// schemaBaseline 是"名字能解析"本身的底分。
const schemaBaseline = 0.45

// excellentFloor 之上且有场景侧佐证时才给 EXCELLENT。
const excellentFloor = 0.85

// renameCeiling 之下且毫无佐证时降为 NEEDS_RENAME。
const renameCeiling = 0.55

var tokenRE = regexp.MustCompile(`[A-Za-z0-9]+`)

// signal 是一条打分证据。corroborating 标记它是否算"场景侧佐证"
// （EXCELLENT 必须至少有一条佐证，光是语法正确不够）。
type signal struct {
	name          string
	weight        float64
	corroborating bool
	detect        func(rec domain.MaterialNameRecord, hints domain.ContextHints, idx *taxonomy.Index) bool
}

var signals = []signal{
	{
		name: "type_indexed", weight: 0.2,
		detect: func(rec domain.MaterialNameRecord, _ domain.ContextHints, idx *taxonomy.Index) bool {
			_, ok := idx.HasType(string(rec.Type))
			return ok
		},
	},
	{
		name: "finish_indexed", weight: 0.15,
		detect: func(rec domain.MaterialNameRecord, _ domain.ContextHints, idx *taxonomy.Index) bool {
			_, ok := idx.HasFinish(rec.Finish)
			return ok
		},
	},
	{
		name: "finish_known_for_type", weight: 0.05,
		detect: func(rec domain.MaterialNameRecord, _ domain.ContextHints, idx *taxonomy.Index) bool {
			_, ok := idx.HasFinishForType(rec.Type, rec.Finish)
			return ok
		},
	},
	{
		name: "texture_echoes_finish", weight: 0.1, corroborating: true,
		detect: func(rec domain.MaterialNameRecord, hints domain.ContextHints, idx *taxonomy.Index) bool {
			return anyTokenEchoes(hints.TextureBasenames, rec.Finish, idx)
		},
	},
	{
		name: "object_hints_type", weight: 0.05, corroborating: true,
		detect: func(rec domain.MaterialNameRecord, hints domain.ContextHints, idx *taxonomy.Index) bool {
			return anyTokenNamesType(hints.ObjectHints, rec.Type, idx)
		},
	},
	{
		name: "collection_hints_type", weight: 0.05, corroborating: true,
		detect: func(rec domain.MaterialNameRecord, hints domain.ContextHints, idx *taxonomy.Index) bool {
			return anyTokenNamesType(hints.CollectionHints, rec.Type, idx)
		},
	},
	{
		name: "scene_tag_present", weight: 0.05,
		detect: func(rec domain.MaterialNameRecord, _ domain.ContextHints, _ *taxonomy.Index) bool {
			return rec.SceneTag != ""
		},
	},
}

// Scorer 持有只读索引；零散状态一概没有，Score 是纯函数。
type Scorer struct {
	idx *taxonomy.Index
}

func NewScorer(idx *taxonomy.Index) *Scorer {
	return &Scorer{idx: idx}
}

// Score 评估既有材质名。
// 解析失败 → NEEDS_RENAME，置信度 1.0（这不是猜测：名字确实不合规）。
func (s *Scorer) Score(existing string, hints domain.ContextHints) domain.QualityReport {
	rec, fail := matname.Decode(existing)
	if fail != nil {
		return domain.QualityReport{
			Label:      domain.QualityNeedsRename,
			Confidence: 1.0,
			Reasons:    []string{"名字不符合 MAT_* 模式：" + fail.String()},
		}
	}

	score := schemaBaseline
	corroborated := false
	reasons := []string{"符合 MAT_* 模式"}
	for _, sig := range signals {
		if !sig.detect(rec, hints, s.idx) {
			continue
		}
		score += sig.weight
		if sig.corroborating {
			corroborated = true
		}
		reasons = append(reasons, "信号命中："+sig.name)
	}
	if score > 1.0 {
		score = 1.0
	}

	label := domain.QualityAcceptable
	switch {
	case score >= excellentFloor && corroborated:
		label = domain.QualityExcellent
	case score < renameCeiling && !corroborated:
		label = domain.QualityNeedsRename
		reasons = append(reasons, "词汇表与场景侧均无佐证")
	default:
		if !corroborated {
			reasons = append(reasons, "无场景侧佐证，封顶 ACCEPTABLE")
		}
	}

	return domain.QualityReport{
		Label:      label,
		Confidence: score,
		Reasons:    reasons,
		Parsed:     &rec,
	}
}

// anyTokenEchoes 判断提示串里是否有 token 与 finish 呼应
// （精确 token 或超过 finish 阈值的相似度）。
func anyTokenEchoes(hints []string, finish string, idx *taxonomy.Index) bool {
	low := strings.ToLower(finish)
	min := idx.Thresholds().MinFinish
	for _, h := range hints {
		for _, tok := range tokenize(h) {
			if tok == low {
				return true
			}
			if taxonomy.Similarity(tok, low) >= min {
				return true
			}
		}
	}
	return false
}

// anyTokenNamesType 判断提示串里是否有 token 指向该类型（含别名）。
func anyTokenNamesType(hints []string, t domain.MaterialType, idx *taxonomy.Index) bool {
	for _, h := range hints {
		for _, tok := range tokenize(h) {
			if mt, ok := idx.HasType(tok); ok && mt == t {
				return true
			}
		}
	}
	return false
}

// tokenize 提取小写字母数字 token；太短的词（≤2）几乎都是噪音，丢掉。
func tokenize(s string) []string {
	var out []string
	for _, tok := range tokenRE.FindAllString(s, -1) {
		if len(tok) <= 2 {
			continue
		}
		out = append(out, strings.ToLower(tok))
	}
	return out
}
