package app

import (
	"time"

	"github.com/lime-pipeline/limenaming/internal/config"
	"github.com/lime-pipeline/limenaming/internal/domain"
)

// Observer 用于把"运行进度/阶段/条目结果"从核心执行流程中解耦出来。
//
// 约束：
// - app 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按条目顺序串行到达（核心是同步批处理，无并发语义）。
type Observer interface {
	// OnStart 在 Execute 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在一条条目裁决完成时调用（用于每条结果的一行输出）。
	OnItemDone(idx, total int, id domain.ItemID, res domain.ItemResult, dur time.Duration)
}
