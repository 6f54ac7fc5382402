package normalize

import (
	"errors"
	"testing"
)

func TestNormalize_ProjectDirPrefix(t *testing.T) {
	got, err := Normalize("AB-00001 Mi Proyecto")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "MiProyecto" {
		t.Fatalf("期望 MiProyecto，实际 %q", got)
	}
}

func TestNormalize_Diacritics(t *testing.T) {
	got, err := Normalize("café  lámpara")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "CafeLampara" {
		t.Fatalf("期望 CafeLampara，实际 %q", got)
	}
}

func TestNormalize_ReservedChars(t *testing.T) {
	got, err := Normalize(`my<bad>:name?/prop*`)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "MyBadNameProp" {
		t.Fatalf("期望 MyBadNameProp，实际 %q", got)
	}
}

func TestNormalize_KeepsInnerCamel(t *testing.T) {
	got, err := Normalize("miProyecto XL")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "MiProyectoXL" {
		t.Fatalf("期望 MiProyectoXL，实际 %q", got)
	}
}

func TestNormalize_EmptyAfterStrip(t *testing.T) {
	_, err := Normalize(`?:/\*`)
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("期望 ErrEmptyName，实际 %v", err)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"AB-00001 Mi Proyecto",
		"café  lámpara",
		"miProyecto XL",
		"  hello   world  ",
		"ÀÉÎÕÜ name",
	}
	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) 不期望错误：%v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q) 二次失败：%v", once, err)
		}
		if once != twice {
			t.Fatalf("幂等性破坏：%q → %q → %q", in, once, twice)
		}
	}
}

func TestSanitizeHint(t *testing.T) {
	got := SanitizeHint(" hint\x00with\tcontrol \n")
	if got != "hint with control" {
		t.Fatalf("期望 %q，实际 %q", "hint with control", got)
	}
}
