// Package matname 实现规范材质名的编解码：
// MAT_{SceneTag?}_{MaterialType}_{Finish}_{V##}。
//
// 解析失败是预期输入（老旧/手写名遍地都是），因此 Decode 返回
// *domain.ParseFailure 值而不是 error；调用方把失败当"需要完整 reconcile"。
package matname

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

const (
	prefix = "MAT"
	sep    = "_"
	// MaxLength 是序列化后的总长上限（宿主侧名字槽位的硬限制）。
	MaxLength = 64
	// maxFinishLen 是 finish 段的合理长度上限。
	maxFinishLen = 32
	// maxVersion 是 V## 块能表达的最大版本。
	maxVersion = 99
)

var (
	sceneTagRE = regexp.MustCompile(`(?i)^(S\d+|Demo|CU)$`)
	finishRE   = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	versionRE  = regexp.MustCompile(`^V(\d{1,2})$`)
	// dupSuffixRE 匹配宿主自动唯一化追加的噪音（.001 / _1）。
	dupSuffixRE = regexp.MustCompile(`(\.\d{1,3}|_\d)$`)
)

// StripDupSuffix 去掉尾部的宿主唯一化后缀（可叠加，如 "Metal.001.002"）。
// 这些后缀是噪音不是语义，必须在解析核心模式前清掉。
func StripDupSuffix(name string) string {
	for {
		next := dupSuffixRE.ReplaceAllString(name, "")
		if next == name {
			return name
		}
		name = next
	}
}

// CanonicalSceneTag 把场景标签收敛为规范形态（S1/Demo/CU）；非法返回 ok=false。
func CanonicalSceneTag(tag string) (string, bool) {
	t := strings.TrimSpace(tag)
	if t == "" {
		return "", false
	}
	if !sceneTagRE.MatchString(t) {
		return "", false
	}
	switch {
	case strings.EqualFold(t, "Demo"):
		return "Demo", true
	case strings.EqualFold(t, "CU"):
		return "CU", true
	default:
		n, err := strconv.Atoi(t[1:])
		if err != nil || n < 0 {
			return "", false
		}
		return fmt.Sprintf("S%d", n), true
	}
}

// Encode 把记录序列化为规范材质名。
// 超长时只截 finish（至少保留 1 个字符），type 与版本块绝不动。
func Encode(rec domain.MaterialNameRecord) string {
	version := rec.Version
	if version < 1 {
		version = 1
	}
	if version > maxVersion {
		version = maxVersion
	}
	vblock := fmt.Sprintf("V%02d", version)

	head := []string{prefix}
	if rec.SceneTag != "" {
		head = append(head, rec.SceneTag)
	}
	head = append(head, string(rec.Type))

	name := strings.Join(append(append([]string{}, head...), rec.Finish, vblock), sep)
	if len(name) <= MaxLength {
		return name
	}

	headLen := len(strings.Join(head, sep)) + 2*len(sep) + len(vblock)
	maxFinish := MaxLength - headLen
	if maxFinish < 1 {
		maxFinish = 1
	}
	finish := rec.Finish
	if len(finish) > maxFinish {
		finish = finish[:maxFinish]
	}
	return strings.Join(append(append([]string{}, head...), finish, vblock), sep)
}

// Decode 反向解析材质名。失败时第二个返回值非 nil（值语义，不是 error）。
//
// 顺序固定：先去宿主后缀，再查前缀/长度，再按段解析。
func Decode(name string) (domain.MaterialNameRecord, *domain.ParseFailure) {
	n := StripDupSuffix(strings.TrimSpace(name))
	if len(n) > MaxLength {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeTooLong, Detail: fmt.Sprintf("长度 %d 超过 %d", len(n), MaxLength),
		}
	}

	parts := strings.Split(n, sep)
	if parts[0] != prefix {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeBadPrefix, Detail: fmt.Sprintf("缺少 %s_ 前缀：%q", prefix, name),
		}
	}

	var tag, typeStr, finish, vblock string
	switch len(parts) {
	case 4:
		typeStr, finish, vblock = parts[1], parts[2], parts[3]
	case 5:
		tag, typeStr, finish, vblock = parts[1], parts[2], parts[3], parts[4]
	default:
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeMissingVersion, Detail: fmt.Sprintf("段数 %d 不符合模式", len(parts)),
		}
	}

	m := versionRE.FindStringSubmatch(vblock)
	if m == nil {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeMissingVersion, Detail: fmt.Sprintf("版本块 %q 非法", vblock),
		}
	}
	version, _ := strconv.Atoi(m[1])
	if version < 1 {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeMissingVersion, Detail: "版本必须 ≥1",
		}
	}

	canonicalTag := ""
	if tag != "" {
		t, ok := CanonicalSceneTag(tag)
		if !ok {
			return domain.MaterialNameRecord{}, &domain.ParseFailure{
				Code: domain.FailCodeBadSceneTag, Detail: fmt.Sprintf("场景标签 %q 非法", tag),
			}
		}
		canonicalTag = t
	}

	mtype := domain.MaterialType(typeStr)
	if !domain.IsAllowedMaterialType(mtype) {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeUnknownType, Detail: fmt.Sprintf("材质类型 %q 不在词汇表内", typeStr),
		}
	}

	if len(finish) > maxFinishLen || !finishRE.MatchString(finish) {
		return domain.MaterialNameRecord{}, &domain.ParseFailure{
			Code: domain.FailCodeBadFinish, Detail: fmt.Sprintf("finish 段 %q 非法", finish),
		}
	}

	return domain.MaterialNameRecord{
		SceneTag: canonicalTag,
		Type:     mtype,
		Finish:   finish,
		Version:  version,
	}, nil
}
