// Package airesp 是外部命名服务回包的唯一信任边界。
//
// 合同是全有或全无：少一条、多一条、重一条，都整批拒绝。
// 未经验证的外部输出部分落地会悄悄污染一部分名字且无从审计，
// 所以这里宁可拒绝整批让调用方精确重试。
package airesp

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/normalize"
)

// forbiddenRE 覆盖最严格平台的路径非法字符与控制字符。
var forbiddenRE = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// ProposalEntry 是外部服务返回的一条原始提案。
// transport 允许重复 id；验证器把重复当错误，绝不做 last-wins。
type ProposalEntry struct {
	ID domain.ItemID
	// Name 是提案的新名字（必填）。
	Name string
	// PathHint/Note 是可选自由文本，验证通过后做清洗。
	PathHint string
	Note     string
}

// Proposal 是验证通过后的一条提案（hint 已清洗）。
type Proposal struct {
	Name     string
	PathHint string
	Note     string
}

// ValidatedBatch 是验证通过的 id → 提案映射；键集合与请求集合严格相等。
type ValidatedBatch map[domain.ItemID]Proposal

// ValidationError 一次性列出整批的全部问题，调用方可以精确重试或升级。
type ValidationError struct {
	Missing    []domain.ItemID
	Extra      []domain.ItemID
	Duplicates []domain.ItemID
	// BadValues：id → 该条提案的形状问题描述。
	BadValues map[domain.ItemID]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("缺失 %d 条 %v", len(e.Missing), e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("多余 %d 条 %v", len(e.Extra), e.Extra))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("重复 %d 条 %v", len(e.Duplicates), e.Duplicates))
	}
	if len(e.BadValues) > 0 {
		parts = append(parts, fmt.Sprintf("非法值 %d 条", len(e.BadValues)))
	}
	return "回包验证失败：" + strings.Join(parts, "；")
}

// AsValidationError 从 error 链中取出 *ValidationError。
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Validate 校验回包完整性与提案形状。
//
// 失败条件（任一命中即整批拒绝，问题全部列出）：
// - 请求过的 id 在回包里缺失
// - 回包里出现未请求的 id
// - 同一 id 出现多次
// - 提案名为空、超长或含路径非法字符/控制字符
// 成功时对可选 hint 做清洗（去首尾空白、剥控制字符）后返回。
func Validate(requested []domain.ItemID, raw []ProposalEntry) (ValidatedBatch, *ValidationError) {
	want := make(map[domain.ItemID]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}

	verr := &ValidationError{BadValues: map[domain.ItemID]string{}}
	seen := map[domain.ItemID]int{}
	batch := make(ValidatedBatch, len(requested))

	for _, entry := range raw {
		seen[entry.ID]++
		if _, ok := want[entry.ID]; !ok {
			continue // 稍后统一收进 Extra
		}
		if reason, ok := checkShape(entry.Name); !ok {
			verr.BadValues[entry.ID] = reason
			continue
		}
		batch[entry.ID] = Proposal{
			Name:     strings.TrimSpace(entry.Name),
			PathHint: normalize.SanitizeHint(entry.PathHint),
			Note:     normalize.SanitizeHint(entry.Note),
		}
	}

	for id, n := range seen {
		if _, ok := want[id]; !ok {
			verr.Extra = append(verr.Extra, id)
		}
		if n > 1 {
			verr.Duplicates = append(verr.Duplicates, id)
		}
	}
	for id := range want {
		if _, ok := seen[id]; !ok {
			verr.Missing = append(verr.Missing, id)
		}
	}

	if len(verr.Missing) > 0 || len(verr.Extra) > 0 || len(verr.Duplicates) > 0 || len(verr.BadValues) > 0 {
		sortIDs(verr.Missing)
		sortIDs(verr.Extra)
		sortIDs(verr.Duplicates)
		return nil, verr
	}
	return batch, nil
}

func checkShape(name string) (string, bool) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "提案名为空", false
	}
	if len(n) > 256 {
		return fmt.Sprintf("提案名长度 %d 超过 256", len(n)), false
	}
	if loc := forbiddenRE.FindString(n); loc != "" {
		return fmt.Sprintf("提案名含非法字符 %q", loc), false
	}
	return "", true
}

func sortIDs(ids []domain.ItemID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
