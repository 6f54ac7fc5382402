package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lime-pipeline/limenaming/internal/airesp"
	"github.com/lime-pipeline/limenaming/internal/colltree"
	"github.com/lime-pipeline/limenaming/internal/domain"
)

// BatchInput 是一次 reconcile 运行的完整输入（调用方导出的场景快照）。
//
// Universe 是现有材质名全集（版本策略需要）；Tree 是容器树快照（可缺省）。
type BatchInput struct {
	Items        []ItemInput     `json:"items"`
	Proposals    []ProposalInput `json:"proposals"`
	Universe     []string        `json:"universe"`
	Tree         *TreeInput      `json:"tree"`
	ActiveBranch []string        `json:"active_branch"`
}

// ItemInput 是一条待处理条目及其场景侧证据。
type ItemInput struct {
	ID           domain.ItemID `json:"id"`
	Kind         string        `json:"kind"`
	ExistingName string        `json:"existing_name"`

	TextureBasenames []string `json:"texture_basenames"`
	ObjectHints      []string `json:"object_hints"`
	CollectionHints  []string `json:"collection_hints"`
}

// ProposalInput 是外部服务对一条条目的原始提案（未经验证）。
type ProposalInput struct {
	ID       domain.ItemID `json:"id"`
	Name     string        `json:"name"`
	PathHint string        `json:"path_hint"`
	Note     string        `json:"note"`
}

// TreeInput 是容器树的 JSON 形态。
type TreeInput struct {
	Name     string       `json:"name"`
	Children []*TreeInput `json:"children"`
}

// Node 把 JSON 树转成解析器消费的快照。
func (t *TreeInput) Node() *colltree.Node {
	if t == nil {
		return nil
	}
	n := &colltree.Node{Name: t.Name}
	for _, c := range t.Children {
		n.Children = append(n.Children, c.Node())
	}
	return n
}

// Item 转出 domain 条目（Kind 非法时由 Execute 按 failed 处理）。
func (in ItemInput) Item() domain.BatchItem {
	return domain.BatchItem{
		ID:           in.ID,
		Kind:         domain.EntityKind(in.Kind),
		ExistingName: in.ExistingName,
		Hints: domain.ContextHints{
			TextureBasenames: append([]string(nil), in.TextureBasenames...),
			ObjectHints:      append([]string(nil), in.ObjectHints...),
			CollectionHints:  append([]string(nil), in.CollectionHints...),
		},
	}
}

// Entries 转出验证器消费的原始提案序列（顺序保留，重复保留）。
func (b BatchInput) Entries() []airesp.ProposalEntry {
	out := make([]airesp.ProposalEntry, 0, len(b.Proposals))
	for _, p := range b.Proposals {
		out = append(out, airesp.ProposalEntry{
			ID:       p.ID,
			Name:     p.Name,
			PathHint: p.PathHint,
			Note:     p.Note,
		})
	}
	return out
}

// LoadBatch 从 JSON 文件读取批输入。
func LoadBatch(path string) (BatchInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return BatchInput{}, fmt.Errorf("读取批输入失败：%w", err)
	}
	var in BatchInput
	if err := json.Unmarshal(b, &in); err != nil {
		return BatchInput{}, fmt.Errorf("批输入 JSON 无效：%w", err)
	}
	return in, nil
}
