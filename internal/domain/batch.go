package domain

// ItemID 是一次批处理中单个条目的标识（由调用方分配，核心只透传）。
type ItemID string

// BatchItem 是调用方提交的一条待处理条目。
//
// 不变量：ID 在一个批次内唯一；Hints 只读。
type BatchItem struct {
	ID           ItemID
	Kind         EntityKind
	ExistingName string
	Hints        ContextHints
}
