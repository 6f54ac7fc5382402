package domain

// Action 是 reconcile 对单条提案的裁决。
type Action string

const (
	// ActionAccept：提案已完全落在 taxonomy 内，原样接受。
	ActionAccept Action = "ACCEPT"
	// ActionNormalize：提案可吸附到最近的 taxonomy 词条（只允许经索引匹配，不允许任意修复）。
	ActionNormalize Action = "NORMALIZE"
	// ActionManualReview：无法裁决，必须由人处理。宁可升级，也不允许擅自发明词条。
	ActionManualReview Action = "MANUAL_REVIEW"
)

// Decision 是一次 reconcile 的完整裁决（每次调用新建，不复用不修改）。
type Decision struct {
	ItemID string
	Action Action

	// ExistingName 是裁决针对的现有名字（版本策略与重试都要用它）。
	ExistingName string

	// Resolved 仅在 ACCEPT/NORMALIZE 时有值。
	Resolved *MaterialNameRecord
	// MatchedType/MatchedFinish 记录吸附到的 taxonomy 词条（NORMALIZE 时必填）。
	MatchedType   MaterialType
	MatchedFinish string

	Confidence float64
	Reason     string

	// ProposedName/ProposedType/ProposedFinish 保留归一前的原始提案
	// （batch 归一需要按原始键分组，并可能重建 Resolved）。
	ProposedName   string
	ProposedType   string
	ProposedFinish string
}

// QualityLabel 是既有材质名的质量标签。
type QualityLabel string

const (
	QualityExcellent   QualityLabel = "EXCELLENT"
	QualityAcceptable  QualityLabel = "ACCEPTABLE"
	QualityNeedsRename QualityLabel = "NEEDS_RENAME"
)

// QualityReport 是打分结果；Reasons 面向人类，逐条说明扣分/加分来源。
type QualityReport struct {
	Label      QualityLabel
	Confidence float64
	Reasons    []string
	// Parsed 仅在名字可解析时有值。
	Parsed *MaterialNameRecord
}

// ContextHints 是打分与 reconcile 可用的场景侧证据（全部只读）。
type ContextHints struct {
	TextureBasenames []string
	ObjectHints      []string
	CollectionHints  []string
}

// EntityKind 是 apply-scope 过滤的实体类别。
type EntityKind string

const (
	EntityObject     EntityKind = "object"
	EntityMaterial   EntityKind = "material"
	EntityCollection EntityKind = "collection"
)

// ApplyScope 是调用方提供的类别开关；核心只负责逐条遵守，不定义 UI。
type ApplyScope struct {
	Objects     bool
	Materials   bool
	Collections bool
}

// Allows 判断某类实体是否在本次处理范围内。
func (s ApplyScope) Allows(kind EntityKind) bool {
	switch kind {
	case EntityObject:
		return s.Objects
	case EntityMaterial:
		return s.Materials
	case EntityCollection:
		return s.Collections
	default:
		return false
	}
}
