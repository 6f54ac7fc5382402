// Package app 把各核心包串成一次批处理会话：
// 验证回包 → 打分 → 裁决 → 批内归一 → 路径解析 → 汇总成对外稳定的 RunReport。
//
// 会话尽量把错误"降级"为条目级失败（单条失败不影响其他）；唯一的整批错误
// 是回包验证失败——未经验证的外部输出绝不允许部分落地。
package app

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lime-pipeline/limenaming/internal/airesp"
	"github.com/lime-pipeline/limenaming/internal/colltree"
	"github.com/lime-pipeline/limenaming/internal/config"
	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/matname"
	"github.com/lime-pipeline/limenaming/internal/normalize"
	"github.com/lime-pipeline/limenaming/internal/quality"
	"github.com/lime-pipeline/limenaming/internal/reconcile"
	"github.com/lime-pipeline/limenaming/internal/taxonomy"
)

// Session 持有一次运行的只读状态。taxonomy 在会话开始加载一次，之后不变。
type Session struct {
	eff config.EffectiveConfig
	idx *taxonomy.Index
	log *zap.Logger
}

// NewSession 加载 taxonomy（配置给了路径就读文件，否则用内置词表）并应用阈值覆盖。
// log 可为 nil。
func NewSession(eff config.EffectiveConfig, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		idx *taxonomy.Index
		err error
	)
	if eff.TaxonomyPath != "" {
		idx, err = taxonomy.Load(eff.TaxonomyPath)
		if err != nil {
			return nil, err
		}
	} else {
		idx = taxonomy.Default()
	}

	th := idx.Thresholds()
	if eff.MinTypeSimilarity > 0 {
		th.MinType = eff.MinTypeSimilarity
	}
	if eff.MinFinishSimilarity > 0 {
		th.MinFinish = eff.MinFinishSimilarity
	}
	if th != idx.Thresholds() {
		idx = taxonomy.New(idx.Entries(), th)
	}

	log.Debug("taxonomy 就绪",
		zap.String("path", eff.TaxonomyPath),
		zap.Int("types", len(idx.Entries())),
		zap.Float64("min_type", th.MinType),
		zap.Float64("min_finish", th.MinFinish))

	return &Session{eff: eff, idx: idx, log: log}, nil
}

// Index 暴露会话的 taxonomy（只读）。
func (s *Session) Index() *taxonomy.Index { return s.idx }

// Execute 执行一次批处理并返回 RunReport。obs 可为 nil。
func (s *Session) Execute(in BatchInput, obs Observer) domain.RunReport {
	started := time.Now().UTC()
	if obs != nil {
		obs.OnStart(s.eff)
	}

	rr := domain.RunReport{
		TaxonomyPath: s.eff.TaxonomyPath,
		StartedAt:    started,
		Items:        make([]domain.ItemResult, 0, len(in.Items)),
	}

	// 回包验证：全有或全无。失败时每条条目都标记 batch_rejected，
	// 让调用方能在报告里看到完整的差异清单。
	validateStarted := time.Now()
	requested := make([]domain.ItemID, 0, len(in.Items))
	for _, it := range in.Items {
		requested = append(requested, it.ID)
	}
	batch, verr := airesp.Validate(requested, in.Entries())
	validateDur := time.Since(validateStarted)
	if obs != nil {
		obs.OnPhaseDone("validate", map[string]any{
			"items":     len(in.Items),
			"proposals": len(in.Proposals),
		}, validateDur)
	}
	if verr != nil {
		s.log.Warn("回包验证失败，整批拒绝", zap.String("detail", verr.Error()))
		for _, it := range in.Items {
			rr.Items = append(rr.Items, domain.ItemResult{
				ID:           string(it.ID),
				Kind:         it.Kind,
				ExistingName: it.ExistingName,
				Status:       domain.StatusFailed,
				ErrorCode:    domain.ErrCodeBatchRejected,
				ErrorMsg:     verr.Error(),
			})
		}
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	scope := domain.ApplyScope{
		Objects:     s.eff.ScopeObjects,
		Materials:   s.eff.ScopeMaterials,
		Collections: s.eff.ScopeCollections,
	}
	tree := in.Tree.Node()
	scorer := quality.NewScorer(s.idx)
	engine := reconcile.NewEngine(s.idx, in.Universe, s.log)

	// 材质先全部裁决，再做批内归一；其他类别直接出结果。
	var (
		materialDecisions []domain.Decision
		materialItems     []domain.BatchItem
		objectNames       = map[string]struct{}{}
	)
	// 对象名的唯一性以批内现有对象名为基准。
	for _, raw := range in.Items {
		if domain.EntityKind(raw.Kind) == domain.EntityObject && raw.ExistingName != "" {
			objectNames[raw.ExistingName] = struct{}{}
		}
	}

	decideStarted := time.Now()
	for _, raw := range in.Items {
		item := raw.Item()
		prop := batch[item.ID]

		if !scope.Allows(item.Kind) {
			reason := "不在本次处理范围内"
			if item.Kind != domain.EntityObject && item.Kind != domain.EntityMaterial && item.Kind != domain.EntityCollection {
				reason = fmt.Sprintf("未知条目类别 %q", raw.Kind)
			}
			rr.Items = append(rr.Items, domain.ItemResult{
				ID:           string(item.ID),
				Kind:         raw.Kind,
				ExistingName: item.ExistingName,
				Status:       domain.StatusSkipped,
				Reason:       reason,
			})
			continue
		}

		switch item.Kind {
		case domain.EntityMaterial:
			d := engine.Reconcile(string(item.ID), item.ExistingName, prop.Name, item.Hints)
			materialDecisions = append(materialDecisions, d)
			materialItems = append(materialItems, item)
		case domain.EntityObject:
			rr.Items = append(rr.Items, s.decideObject(item, prop, tree, in.ActiveBranch, objectNames))
		case domain.EntityCollection:
			rr.Items = append(rr.Items, s.decideCollection(item, prop, tree, in.ActiveBranch))
		}
	}

	materialDecisions = engine.ApplyBatchNormalization(materialDecisions)
	for i, d := range materialDecisions {
		item := materialItems[i]
		qr := scorer.Score(item.ExistingName, item.Hints)
		rr.Items = append(rr.Items, materialResult(item, d, qr))
	}
	decideDur := time.Since(decideStarted)

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	if obs != nil {
		obs.OnPhaseDone("decide", map[string]any{
			"accepted":   rr.Summary.Accepted,
			"normalized": rr.Summary.Normalized,
			"review":     rr.Summary.Review,
			"skipped":    rr.Summary.Skipped,
			"failed":     rr.Summary.Failed,
		}, decideDur)
		total := len(rr.Items)
		for i, res := range rr.Items {
			obs.OnItemDone(i, total, domain.ItemID(res.ID), res, 0)
		}
	}

	s.log.Info("批处理完成",
		zap.Int("items", len(rr.Items)),
		zap.Int("accepted", rr.Summary.Accepted),
		zap.Int("normalized", rr.Summary.Normalized),
		zap.Int("review", rr.Summary.Review),
		zap.Duration("elapsed", rr.FinishedAt.Sub(rr.StartedAt)))
	return rr
}

// materialResult 把裁决 + 质量报告折叠成对外条目。
func materialResult(item domain.BatchItem, d domain.Decision, qr domain.QualityReport) domain.ItemResult {
	res := domain.ItemResult{
		ID:           string(item.ID),
		Kind:         string(domain.EntityMaterial),
		ExistingName: item.ExistingName,
		Confidence:   d.Confidence,
	}
	reason := d.Reason
	if qr.Label != "" {
		reason = fmt.Sprintf("现有名质量 %s；%s", qr.Label, d.Reason)
	}
	res.Reason = reason

	switch d.Action {
	case domain.ActionAccept:
		res.Status = domain.StatusAccepted
		res.ResolvedName = matname.Encode(*d.Resolved)
	case domain.ActionNormalize:
		res.Status = domain.StatusNormalized
		res.ResolvedName = matname.Encode(*d.Resolved)
	default:
		res.Status = domain.StatusReview
	}
	return res
}

// decideObject 归一对象名并（有树时）解析 path hint 指向的目的容器。
func (s *Session) decideObject(item domain.BatchItem, prop airesp.Proposal, tree *colltree.Node, activeBranch []string, used map[string]struct{}) domain.ItemResult {
	res := domain.ItemResult{
		ID:           string(item.ID),
		Kind:         string(domain.EntityObject),
		ExistingName: item.ExistingName,
	}

	name := normalize.NormalizeAssetName(prop.Name, item.ExistingName)
	if name == "" || !normalize.IsValidAssetName(name) {
		res.Status = domain.StatusReview
		res.Reason = fmt.Sprintf("提案 %q 无法归一成合法资产名", prop.Name)
		return res
	}
	// 自己的现有名不占唯一性槽位（改名后旧名随即让出）。
	delete(used, item.ExistingName)
	name = normalize.EnsureUniqueAssetName(name, used)
	used[name] = struct{}{}
	res.ResolvedName = name
	res.Confidence = 1.0

	if name == item.ExistingName {
		res.Status = domain.StatusAccepted
		res.Reason = "现有名已合规"
	} else {
		res.Status = domain.StatusNormalized
	}

	if tree != nil && prop.PathHint != "" {
		segs := strings.Split(prop.PathHint, "/")
		leaf := strings.TrimSpace(segs[len(segs)-1])
		r := colltree.Resolve(leaf, tree, activeBranch)
		applyResolution(&res, r, leaf)
	}
	return res
}

// decideCollection 在容器树里解析集合条目的落位。
func (s *Session) decideCollection(item domain.BatchItem, prop airesp.Proposal, tree *colltree.Node, activeBranch []string) domain.ItemResult {
	res := domain.ItemResult{
		ID:           string(item.ID),
		Kind:         string(domain.EntityCollection),
		ExistingName: item.ExistingName,
	}
	if tree == nil {
		res.Status = domain.StatusSkipped
		res.Reason = "输入未携带容器树快照"
		return res
	}

	r := colltree.Resolve(prop.Name, tree, activeBranch)
	switch r.Status {
	case domain.ResolveAuto:
		res.Status = domain.StatusAccepted
		res.Confidence = 1.0
		res.TargetPath = strings.Join(r.ChosenPath, "/")
	case domain.ResolveAmbiguous:
		res.Status = domain.StatusReview
		res.Reason = fmt.Sprintf("路径歧义：%d 个并列候选", len(r.Candidates))
		for _, c := range r.Candidates {
			res.Candidates = append(res.Candidates, strings.Join(c.Path, "/"))
		}
	default:
		res.Status = domain.StatusReview
		res.Reason = fmt.Sprintf("容器 %q 不存在；是否新建由调用方决定", prop.Name)
	}
	return res
}

// applyResolution 把路径解析结果并入对象条目（歧义/未命中把条目整体转 review）。
func applyResolution(res *domain.ItemResult, r domain.Resolution, leaf string) {
	switch r.Status {
	case domain.ResolveAuto:
		res.TargetPath = strings.Join(r.ChosenPath, "/")
	case domain.ResolveAmbiguous:
		res.Status = domain.StatusReview
		res.Reason = fmt.Sprintf("目的路径歧义：%d 个并列候选", len(r.Candidates))
		for _, c := range r.Candidates {
			res.Candidates = append(res.Candidates, strings.Join(c.Path, "/"))
		}
	default:
		res.Status = domain.StatusReview
		res.Reason = fmt.Sprintf("目的容器 %q 不存在；是否新建由调用方决定", leaf)
	}
}
