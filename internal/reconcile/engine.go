// Package reconcile 对外部提出的材质名做裁决：
// ACCEPT（已在 taxonomy 内）、NORMALIZE（吸附到最近词条）、MANUAL_REVIEW（升级给人）。
//
// 裁决是纯函数：同样的输入 + 同一份只读索引，永远得到同样的 Decision。
// 引擎绝不发明词条——找不到超过阈值的匹配就升级，不猜。
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/matname"
	"github.com/lime-pipeline/limenaming/internal/taxonomy"
)

// Engine 持有会话级只读状态：taxonomy 索引与现有名字全集快照。
// 全集只用于版本策略（冲突时找最小空闲版本），构造后不再变。
type Engine struct {
	idx      *taxonomy.Index
	universe []string
	log      *zap.Logger
}

// NewEngine 构造引擎。universe 是会话开始时现有材质名的快照；log 可为 nil。
func NewEngine(idx *taxonomy.Index, universe []string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		idx:      idx,
		universe: append([]string(nil), universe...),
		log:      log,
	}
}

// Reconcile 裁决一条提案。
//
// 顺序固定：
// 1. 提案可解析且类型/finish 都在索引内（精确或别名）→ ACCEPT
// 2. 可解析但有未入索引的段 → 经 taxonomy 相似度吸附 → NORMALIZE；吸不上 → MANUAL_REVIEW
// 3. 解析失败 → MANUAL_REVIEW
// 版本策略见 assignVersion。
func (e *Engine) Reconcile(itemID, existingName, proposedName string, hints domain.ContextHints) domain.Decision {
	d := domain.Decision{
		ItemID:       itemID,
		ExistingName: existingName,
		ProposedName: proposedName,
	}

	rec, fail := matname.Decode(proposedName)
	if fail != nil {
		d.Action = domain.ActionManualReview
		d.Confidence = 0
		d.Reason = "提案无法解析：" + fail.String()
		e.log.Debug("提案解析失败",
			zap.String("item", itemID),
			zap.String("proposed", proposedName),
			zap.String("code", fail.Code))
		return d
	}
	d.ProposedType = string(rec.Type)
	d.ProposedFinish = rec.Finish

	canonType, typeExact := e.idx.HasType(string(rec.Type))
	typeSim := 1.0
	if !typeExact {
		t, sim, ok := e.idx.ClosestType(string(rec.Type))
		if !ok {
			d.Action = domain.ActionManualReview
			d.Confidence = 0
			d.Reason = fmt.Sprintf("材质类型 %q 在 taxonomy 中无足够相似的词条", rec.Type)
			return d
		}
		canonType, typeSim = t, sim
	}

	canonFinish, finishForType := e.idx.HasFinishForType(canonType, rec.Finish)
	finishExact := finishForType
	if !finishExact {
		canonFinish, finishExact = e.idx.HasFinish(rec.Finish)
	}
	finishSim := 1.0
	if !finishExact {
		f, sim, ok := e.idx.ClosestFinish(rec.Finish)
		if !ok {
			d.Action = domain.ActionManualReview
			d.Confidence = 0
			d.Reason = fmt.Sprintf("finish %q 在 taxonomy 中无足够相似的词条", rec.Finish)
			return d
		}
		canonFinish, finishSim = f, sim
	}

	resolved := domain.MaterialNameRecord{
		SceneTag: rec.SceneTag,
		Type:     canonType,
		Finish:   canonFinish,
		Version:  rec.Version,
	}
	resolved.Version = e.assignVersion(existingName, resolved)
	d.Resolved = &resolved
	d.MatchedType = canonType
	d.MatchedFinish = canonFinish

	if typeExact && finishExact {
		d.Action = domain.ActionAccept
		if finishForType {
			d.Confidence = 0.95
		} else {
			// finish 在全局词表里但不属于该类型：接受，置信度略降。
			d.Confidence = 0.85
		}
		if echoesFinish(hints, canonFinish, e.idx.Thresholds().MinFinish) {
			d.Confidence += 0.05
		}
		if d.Confidence > 1.0 {
			d.Confidence = 1.0
		}
		d.Reason = "提案已完全落在 taxonomy 内"
		return d
	}

	d.Action = domain.ActionNormalize
	d.Confidence = typeSim
	if finishSim < d.Confidence {
		d.Confidence = finishSim
	}
	d.Reason = fmt.Sprintf("吸附到 taxonomy 词条 %s/%s（类型相似度 %.2f，finish 相似度 %.2f）",
		canonType, canonFinish, typeSim, finishSim)
	e.log.Debug("提案吸附",
		zap.String("item", itemID),
		zap.String("proposed", proposedName),
		zap.String("matched", string(canonType)+"/"+canonFinish))
	return d
}

// assignVersion 实现版本策略：
// - 语义键与现有名一致 → 复用现有版本（避免无谓 bump）
// - 键变了且目标版本被占 → 取 ≥ 提案版本的最小空闲版本
// 版本只增不减。
func (e *Engine) assignVersion(existingName string, resolved domain.MaterialNameRecord) int {
	exRec, exFail := matname.Decode(existingName)
	if exFail == nil && exRec.Key() == resolved.Key() {
		return exRec.Version
	}
	used := matname.UsedVersions(e.universe, resolved.Key())
	v := resolved.Version
	if v < 1 {
		v = 1
	}
	if _, taken := used[v]; !taken {
		return v
	}
	return matname.LowestFreeVersion(e.universe, resolved.Key(), v)
}

// echoesFinish 判断纹理 basename 是否呼应 finish 词（精确或超阈值相似）。
func echoesFinish(hints domain.ContextHints, finish string, minSim float64) bool {
	low := strings.ToLower(finish)
	for _, base := range hints.TextureBasenames {
		for _, tok := range strings.FieldsFunc(strings.ToLower(base), func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
		}) {
			if tok == low || taxonomy.Similarity(tok, finish) >= minSim {
				return true
			}
		}
	}
	return false
}

// ApplyBatchNormalization 做批内多数归一：
// 先把"归一前的 (type, finish) 键"按相似度聚成组（同一批里 Glosy/Glossy 这类
// 近重复键必须落进同一组，否则各自吸附会造成词条漂移），再在组内取严格多数：
// - 组内存在严格多数词条 → 少数成员强制吸附到多数词条
// - 有成员已吸附但凑不出严格多数（含并列）→ 整组 MANUAL_REVIEW
// - 组内无人吸附成功 → 原样保留
//
// 必须在组内所有 Reconcile 调用完成之后运行；输入切片不被修改。
func (e *Engine) ApplyBatchNormalization(decisions []domain.Decision) []domain.Decision {
	out := append([]domain.Decision(nil), decisions...)

	groups := e.clusterByProposedKey(out)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		e.normalizeGroup(out, members)
	}
	return out
}

// clusterByProposedKey 把可解析提案的下标按归一前键聚组。
// 两个键同组的条件：类型收敛到同一词条（或原样相等），且 finish 相等或相似度超阈值。
// 遍历顺序固定（先按键排序），保证结果确定。
func (e *Engine) clusterByProposedKey(decisions []domain.Decision) [][]int {
	type pair struct {
		typeKey string
		finish  string
	}
	byPair := map[pair][]int{}
	for i, d := range decisions {
		if d.ProposedType == "" || d.ProposedFinish == "" {
			continue
		}
		tk := strings.ToLower(string(d.MatchedType))
		if tk == "" {
			tk = strings.ToLower(d.ProposedType)
		}
		p := pair{typeKey: tk, finish: strings.ToLower(d.ProposedFinish)}
		byPair[p] = append(byPair[p], i)
	}

	pairs := make([]pair, 0, len(byPair))
	for p := range byPair {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].typeKey != pairs[j].typeKey {
			return pairs[i].typeKey < pairs[j].typeKey
		}
		return pairs[i].finish < pairs[j].finish
	})

	minSim := e.idx.Thresholds().MinFinish
	assigned := make([]int, len(pairs))
	for i := range assigned {
		assigned[i] = -1
	}
	var groups [][]int
	for i, p := range pairs {
		if assigned[i] >= 0 {
			continue
		}
		gi := len(groups)
		assigned[i] = gi
		members := append([]int(nil), byPair[p]...)
		for j := i + 1; j < len(pairs); j++ {
			if assigned[j] >= 0 || pairs[j].typeKey != p.typeKey {
				continue
			}
			if taxonomy.Similarity(p.finish, pairs[j].finish) >= minSim {
				assigned[j] = gi
				members = append(members, byPair[pairs[j]]...)
			}
		}
		sort.Ints(members)
		groups = append(groups, members)
	}
	return groups
}

// normalizeGroup 在一个组内就地执行多数规则。
func (e *Engine) normalizeGroup(out []domain.Decision, members []int) {
	type entry struct {
		t domain.MaterialType
		f string
	}
	tally := map[entry]int{}
	resolved := 0
	for _, i := range members {
		d := out[i]
		if d.Action == domain.ActionAccept || d.Action == domain.ActionNormalize {
			tally[entry{d.MatchedType, d.MatchedFinish}]++
			resolved++
		}
	}
	if resolved == 0 {
		return
	}

	var top entry
	topCount := 0
	tie := false
	keys := make([]entry, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].t != keys[j].t {
			return keys[i].t < keys[j].t
		}
		return keys[i].f < keys[j].f
	})
	for _, k := range keys {
		switch {
		case tally[k] > topCount:
			top, topCount, tie = k, tally[k], false
		case tally[k] == topCount:
			tie = true
		}
	}

	if tie || topCount*2 <= len(members) {
		// 凑不出严格多数：整组升级，已吸附的成员也不例外。
		for _, i := range members {
			out[i].Action = domain.ActionManualReview
			out[i].Resolved = nil
			out[i].Confidence = 0
			out[i].Reason = "批内归一分歧：组内无严格多数词条，整组转人工"
		}
		e.log.Info("批内归一分歧，整组转人工", zap.Int("members", len(members)))
		return
	}

	frac := float64(topCount) / float64(len(members))
	for _, i := range members {
		d := out[i]
		if (d.Action == domain.ActionAccept || d.Action == domain.ActionNormalize) &&
			d.MatchedType == top.t && d.MatchedFinish == top.f {
			continue
		}
		rec, fail := matname.Decode(d.ProposedName)
		if fail != nil {
			continue
		}
		forced := domain.MaterialNameRecord{
			SceneTag: rec.SceneTag,
			Type:     top.t,
			Finish:   top.f,
			Version:  rec.Version,
		}
		forced.Version = e.assignVersion(d.ExistingName, forced)
		out[i].Action = domain.ActionNormalize
		out[i].Resolved = &forced
		out[i].MatchedType = top.t
		out[i].MatchedFinish = top.f
		out[i].Confidence = frac
		out[i].Reason = fmt.Sprintf("批内多数归一：组内 %d/%d 吸附到 %s/%s",
			topCount, len(members), top.t, top.f)
	}
}
