package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEffective_ConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ConfigMissingPath(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"), []byte(`{"scene_step":10}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingPath, err, Code(err))
	}
}

func TestLoadEffective_ApplyCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"), []byte(`{"path":"project","apply":true}`))

	eff, err := LoadEffective(cwd, CLIArgs{
		Apply:    false,
		ApplySet: true, // --apply=false
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Apply != false {
		t.Fatalf("期望 apply=false，实际=%v", eff.Apply)
	}

	wantPath := filepath.Join(cwd, "project")
	if eff.Path != wantPath {
		t.Fatalf("期望 path=%q，实际=%q", wantPath, eff.Path)
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"), []byte(`{"path":"p"}`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.SceneStep != DefaultSceneStep {
		t.Fatalf("期望 scene_step=%d，实际=%d", DefaultSceneStep, eff.SceneStep)
	}
	if eff.Apply {
		t.Fatalf("apply 默认必须是 false（干跑优先）")
	}
	if !eff.ScopeObjects || !eff.ScopeMaterials || !eff.ScopeCollections {
		t.Fatalf("scope 缺省必须三类全开")
	}
	if eff.TaxonomyPath != "" {
		t.Fatalf("taxonomy 缺省应为空（内置词表），实际=%q", eff.TaxonomyPath)
	}
}

func TestLoadEffective_TaxonomyCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"), []byte(`{"path":"p","taxonomy":"from_config.yaml"}`))

	eff, err := LoadEffective(cwd, CLIArgs{
		Taxonomy:    "from_cli.yaml",
		TaxonomySet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if want := filepath.Join(cwd, "from_cli.yaml"); eff.TaxonomyPath != want {
		t.Fatalf("期望 taxonomy=%q，实际=%q", want, eff.TaxonomyPath)
	}
}

func TestLoadEffective_ScopeFlags(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"),
		[]byte(`{"path":"p","scope":{"objects":false}}`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ScopeObjects {
		t.Fatalf("scope.objects=false 未生效")
	}
	if !eff.ScopeMaterials || !eff.ScopeCollections {
		t.Fatalf("未显式关闭的类别必须保持开启")
	}
}

func TestLoadEffective_InvalidSceneStep(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"), []byte(`{"path":"p","scene_step":-5}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidSimilarityOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "limenaming.json"),
		[]byte(`{"path":"p","min_finish_similarity":1.5}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_CLIPath_ConfigOptional(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := LoadEffective(cwd, CLIArgs{
		Path: root,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != root {
		t.Fatalf("期望 path=%q，实际=%q", root, eff.Path)
	}
}

func TestLoadEffective_CLIPath_InvalidConfig(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	writeFile(t, filepath.Join(root, "limenaming.json"), []byte(`{`))

	_, err := LoadEffective(cwd, CLIArgs{Path: root})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
