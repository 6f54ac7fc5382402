package domain

// FileType 是工程文件的类型代码（决定文件名形态与是否携带 SC 号）。
type FileType string

const (
	FileTypeBase   FileType = "BASE"
	FileTypePV     FileType = "PV"
	FileTypeRender FileType = "REND"
	FileTypeSB     FileType = "SB"
	FileTypeAnim   FileType = "ANIM"
	FileTypeTmp    FileType = "TMP"
)

// tokensByType 是类型代码与文件名 token 的双向固定映射。
// 映射集中在这里，编码与解析都必须走同一张表。
var tokensByType = map[FileType]string{
	FileTypeBase:   "BaseModel",
	FileTypePV:     "PV",
	FileTypeRender: "Render",
	FileTypeSB:     "SB",
	FileTypeAnim:   "Anim",
	FileTypeTmp:    "Tmp",
}

var typesByToken = func() map[string]FileType {
	m := make(map[string]FileType, len(tokensByType))
	for t, tok := range tokensByType {
		m[tok] = t
	}
	return m
}()

// Token 返回文件名中使用的 token；未知类型返回 ok=false。
func (t FileType) Token() (string, bool) {
	tok, ok := tokensByType[t]
	return tok, ok
}

// FileTypeByToken 按 token 反查类型。
func FileTypeByToken(token string) (FileType, bool) {
	t, ok := typesByToken[token]
	return t, ok
}

// NeedsScene 判断该类型是否必须携带 SC 号。
// BaseModel/Tmp 永远不带；其余必须带。
func (t FileType) NeedsScene() bool {
	switch t {
	case FileTypeBase, FileTypeTmp:
		return false
	default:
		return true
	}
}

// FilenameRecord 是规范文件名解析/生成的结构化形态（不可变值类型）。
//
// 不变量：
// - Scene 仅在 Type.NeedsScene() 时有意义（1–999）；否则必须为 0
// - Revision 是单个大写字母 A–Z
type FilenameRecord struct {
	ProjectName string
	Type        FileType
	Scene       int
	Revision    string
}
