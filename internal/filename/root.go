package filename

import (
	"path/filepath"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

// FindProjectRoot 从 path 自底向上找第一个 "XX-##### Name" 形态的目录。
//
// 只做字符串回溯，不碰文件系统：调用方传进来的路径是否真实存在不归这里管。
// 返回匹配目录的完整路径与解析出的项目代码；找不到时 ok=false。
func FindProjectRoot(path string) (root string, code domain.ProjectCode, ok bool) {
	p := filepath.Clean(path)
	for {
		base := filepath.Base(p)
		if c, _, matched := domain.SplitProjectDir(base); matched {
			return p, c, true
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", "", false
		}
		p = parent
	}
}

// ProjectNameFromRoot 取根目录名的自由文本部分（未规范化，规范化交给 normalize 包）。
func ProjectNameFromRoot(root string) (string, bool) {
	_, free, ok := domain.SplitProjectDir(filepath.Base(filepath.Clean(root)))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(free), true
}
