package domain

// BlendFile 是扫描阶段产出的一个 .blend 文件条目。
// Base 已去扩展名，供文件名编解码直接消费。
type BlendFile struct {
	AbsPath string
	RelPath string
	Base    string
	Size    int64
	ModUnix int64
}
