package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanBlendFiles_ExcludeBackupAndCache(t *testing.T) {
	root := t.TempDir()

	// 永久排除 backup/cache。
	touch(t, filepath.Join(root, "backup", "AB-00001 Demo_PV_SC001_Rev_A.blend"))
	touch(t, filepath.Join(root, "cache", "x.blend"))

	// 正常目录。
	touch(t, filepath.Join(root, "scenes", "AB-00001 Demo_PV_SC001_Rev_A.blend"))
	touch(t, filepath.Join(root, "scenes", "notes.txt"))

	got, err := ScanBlendFiles(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个 blend 文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("scenes", "AB-00001 Demo_PV_SC001_Rev_A.blend")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
	if got[0].Base != "AB-00001 Demo_PV_SC001_Rev_A" {
		t.Fatalf("Base 未去扩展名：%q", got[0].Base)
	}
}

func TestScanBlendFiles_ExcludeDirsFromConfig(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "temp", "A_Tmp_Rev_A.blend"))
	touch(t, filepath.Join(root, "ok", "B_Tmp_Rev_B.blend"))

	got, err := ScanBlendFiles(root, []string{"temp"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个 blend 文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("ok", "B_Tmp_Rev_B.blend")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
}

func TestScanBlendFiles_SkipsNumberedBackups(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X.blend1"))
	touch(t, filepath.Join(root, "X.BLEND"))

	got, err := ScanBlendFiles(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个 blend 文件（.blend1 不算），实际 %d", len(got))
	}
	if got[0].Base != "X" {
		t.Fatalf("Base = %q", got[0].Base)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
