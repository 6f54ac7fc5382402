package domain

// MaterialType 是材质类型（固定词汇表，词汇表外的值一律拒绝）。
type MaterialType string

// allowedMaterialTypes 是唯一合法的材质类型集合。
// 注意：大小写敏感；解析时不做任何"就近修正"（归一只允许走 taxonomy 匹配）。
var allowedMaterialTypes = []MaterialType{
	"Plastic", "Metal", "Glass", "Rubber", "Silicone",
	"Background", "Paint", "Wood", "Fabric", "Ceramic",
	"Emissive", "Stone", "Concrete", "Paper", "Leather",
	"Liquid", "Organic", "Tissue", "Tooth", "Text",
}

var materialTypeSet = func() map[MaterialType]struct{} {
	m := make(map[MaterialType]struct{}, len(allowedMaterialTypes))
	for _, t := range allowedMaterialTypes {
		m[t] = struct{}{}
	}
	return m
}()

// AllowedMaterialTypes 返回固定词汇表（副本，调用方不可能改到内部状态）。
func AllowedMaterialTypes() []MaterialType {
	out := make([]MaterialType, len(allowedMaterialTypes))
	copy(out, allowedMaterialTypes)
	return out
}

// IsAllowedMaterialType 做大小写敏感的词汇表成员判断。
func IsAllowedMaterialType(t MaterialType) bool {
	_, ok := materialTypeSet[t]
	return ok
}

// MaterialNameRecord 是规范材质名的结构化形态（不可变值类型）。
//
// 不变量：
// - Type 必须在固定词汇表内
// - Finish 是无分隔符的字母数字 CamelCase
// - Version ≥ 1；同一 Key 下版本只增不减
// - 序列化后总长 ≤ 64
type MaterialNameRecord struct {
	SceneTag string // 可选；规范形态 S<N> / Demo / CU
	Type     MaterialType
	Finish   string
	Version  int
}

// Key 返回语义分组键（版本策略以该键为单位）。
func (r MaterialNameRecord) Key() MaterialKey {
	return MaterialKey{SceneTag: r.SceneTag, Type: r.Type, Finish: r.Finish}
}

// MaterialKey 是 (scene_tag, type, finish) 语义键。
type MaterialKey struct {
	SceneTag string
	Type     MaterialType
	Finish   string
}

// ParseFailure 描述一次材质名解析失败（是值不是 error：
// 老旧/不规范名是预期输入，调用方必须把它当"需要完整 reconcile"处理）。
type ParseFailure struct {
	// Code 取值见 FailCode* 常量。
	Code   string
	Detail string
}

const (
	FailCodeBadPrefix      = "bad_prefix"
	FailCodeUnknownType    = "unknown_type"
	FailCodeBadFinish      = "bad_finish"
	FailCodeMissingVersion = "missing_version"
	FailCodeBadSceneTag    = "bad_scene_tag"
	FailCodeTooLong        = "too_long"
)

func (f *ParseFailure) String() string {
	if f == nil {
		return ""
	}
	if f.Detail == "" {
		return f.Code
	}
	return f.Code + "：" + f.Detail
}
