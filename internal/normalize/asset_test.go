package normalize

import "testing"

func TestNormalizeAssetName_Basic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"wooden chair", "Wooden_Chair"},
		{"chair small", "Chair_Small"},
		{"lamp 03", "Lamp_03"},
		{"miSilla grande", "MiSilla_Grande"},
		{"", "Asset"},
		{"***", "Asset"},
		{"42 things", "Asset_42_Things"},
	}
	for _, c := range cases {
		got := NormalizeAssetName(c.in, "Asset")
		if got != c.want {
			t.Fatalf("NormalizeAssetName(%q)：期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}

func TestNormalizeAssetName_Idempotent(t *testing.T) {
	inputs := []string{"wooden chair", "chair small", "lamp 03", "HTTPServer backdrop"}
	for _, in := range inputs {
		once := NormalizeAssetName(in, "Asset")
		twice := NormalizeAssetName(once, "Asset")
		if once != twice {
			t.Fatalf("幂等性破坏：%q → %q → %q", in, once, twice)
		}
	}
}

func TestIsValidAssetName(t *testing.T) {
	valid := []string{"Chair", "Chair_Small", "Lamp_03", "BackDrop_Left_02"}
	for _, n := range valid {
		if !IsValidAssetName(n) {
			t.Fatalf("期望合法：%q", n)
		}
	}
	invalid := []string{"", "chair", "Chair__Small", "Chair_", "_Chair", "Chair Small"}
	for _, n := range invalid {
		if IsValidAssetName(n) {
			t.Fatalf("期望非法：%q", n)
		}
	}
}

func TestEnsureUniqueAssetName(t *testing.T) {
	existing := map[string]struct{}{
		"Chair":    {},
		"Chair_02": {},
	}
	got := EnsureUniqueAssetName("chair", existing)
	if got != "Chair_03" {
		t.Fatalf("期望 Chair_03，实际 %q", got)
	}

	got = EnsureUniqueAssetName("lamp", existing)
	if got != "Lamp" {
		t.Fatalf("期望 Lamp，实际 %q", got)
	}

	// 尾部已有数字段：从该段继续递增并保留位宽。
	existing["Lamp_03"] = struct{}{}
	got = EnsureUniqueAssetName("Lamp_03", existing)
	if got != "Lamp_04" {
		t.Fatalf("期望 Lamp_04，实际 %q", got)
	}
}

func TestAssetGroupKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"WoodenChair_Small", "Wooden"},
		{"Chair", "Chair"},
		{"Lamp_03", "Lamp"},
	}
	for _, c := range cases {
		if got := AssetGroupKey(c.in); got != c.want {
			t.Fatalf("AssetGroupKey(%q)：期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}
