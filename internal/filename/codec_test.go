package filename

import (
	"testing"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

func TestDecode_WithScene(t *testing.T) {
	var c Codec
	rec, err := c.Decode("MiProyecto_PV_SC001_Rev_A.blend")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := domain.FilenameRecord{ProjectName: "MiProyecto", Type: domain.FileTypePV, Scene: 1, Revision: "A"}
	if rec != want {
		t.Fatalf("期望 %+v，实际 %+v", want, rec)
	}
}

func TestDecode_NoScene(t *testing.T) {
	var c Codec
	rec, err := c.Decode("MiProyecto_BaseModel_Rev_C")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rec.Type != domain.FileTypeBase || rec.Scene != 0 || rec.Revision != "C" {
		t.Fatalf("解析结果不符：%+v", rec)
	}
}

func TestDecode_Errors(t *testing.T) {
	var c Codec
	cases := []struct {
		name     string
		wantCode string
	}{
		{"MiProyecto_Foo_SC001_Rev_A", ErrCodeUnrecognizedToken},
		{"hello", ErrCodeUnrecognizedToken},
		{"MiProyecto_PV_SC1_Rev_A", ErrCodeMalformedScene},
		{"MiProyecto_PV_SC000_Rev_A", ErrCodeMalformedScene},
		{"MiProyecto_PV_SCabc_Rev_A", ErrCodeMalformedScene},
		{"MiProyecto_BaseModel_SC010_Rev_A", ErrCodeMalformedScene},
		{"MiProyecto_PV_Rev_A", ErrCodeMalformedScene},
		{"MiProyecto_PV_SC010_Rev_a", ErrCodeMalformedRevision},
		{"MiProyecto_PV_SC010_Rev_AB", ErrCodeMalformedRevision},
		{"MiProyecto_BaseModel_Rev_1", ErrCodeMalformedRevision},
	}
	for _, tc := range cases {
		_, err := c.Decode(tc.name)
		if got := ErrCode(err); got != tc.wantCode {
			t.Fatalf("Decode(%q)：期望 error_code %q，实际 %q（err=%v）", tc.name, tc.wantCode, got, err)
		}
	}
}

func TestEncode_SceneStepPolicy(t *testing.T) {
	c := Codec{Policy: Policy{SceneStep: 10}}
	rec := domain.FilenameRecord{ProjectName: "Demo", Type: domain.FileTypeRender, Scene: 15, Revision: "B"}
	if _, err := c.Encode(rec); ErrCode(err) != ErrCodeSceneStep {
		t.Fatalf("期望 %s，实际 %v", ErrCodeSceneStep, err)
	}

	rec.Scene = 20
	got, err := c.Encode(rec)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "Demo_Render_SC020_Rev_B" {
		t.Fatalf("期望 Demo_Render_SC020_Rev_B，实际 %q", got)
	}

	free := Codec{Policy: Policy{SceneStep: 10, FreeSceneNumbering: true}}
	rec.Scene = 15
	if _, err := free.Encode(rec); err != nil {
		t.Fatalf("自由编号下不期望错误：%v", err)
	}
}

// 往返性质：所有满足不变量的记录，decode(encode(r)) == r。
func TestRoundTrip(t *testing.T) {
	var c Codec
	types := []domain.FileType{
		domain.FileTypeBase, domain.FileTypePV, domain.FileTypeRender,
		domain.FileTypeSB, domain.FileTypeAnim, domain.FileTypeTmp,
	}
	scenes := []int{1, 7, 10, 99, 100, 999}
	revs := []string{"A", "M", "Z"}

	for _, ft := range types {
		for _, rev := range revs {
			recs := []domain.FilenameRecord{}
			if ft.NeedsScene() {
				for _, sc := range scenes {
					recs = append(recs, domain.FilenameRecord{ProjectName: "MiProyecto", Type: ft, Scene: sc, Revision: rev})
				}
			} else {
				recs = append(recs, domain.FilenameRecord{ProjectName: "MiProyecto", Type: ft, Revision: rev})
			}
			for _, rec := range recs {
				name, err := c.Encode(rec)
				if err != nil {
					t.Fatalf("Encode(%+v)：%v", rec, err)
				}
				back, err := c.Decode(name)
				if err != nil {
					t.Fatalf("Decode(%q)：%v", name, err)
				}
				if back != rec {
					t.Fatalf("往返失败：%+v → %q → %+v", rec, name, back)
				}
			}
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	path := "/srv/projects/AB-00001 Mi Proyecto/2. Graphic & Media/file.blend"
	root, code, ok := FindProjectRoot(path)
	if !ok {
		t.Fatalf("期望找到项目根")
	}
	if code != domain.ProjectCode("AB-00001") {
		t.Fatalf("期望 AB-00001，实际 %q", code)
	}
	if root != "/srv/projects/AB-00001 Mi Proyecto" {
		t.Fatalf("根路径不符：%q", root)
	}

	if _, _, ok := FindProjectRoot("/tmp/nothing/here"); ok {
		t.Fatalf("不应找到项目根")
	}
}
