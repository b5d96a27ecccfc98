package match

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"trims and collapses whitespace", "  Go   Weekly \t Issue ", "Go Weekly Issue"},
		{"unifies curly quotes", "“Go” and ‘Rust’", `"Go" and 'Rust'`},
		{"unifies full-width colon", "第42期：泛型", "第42期:泛型"},
		{"drops full-width parens", "Go 周刊（第 5 期）", "Go 周刊第 5 期"},
		{"drops ascii parens", "Release (stable)", "Release stable"},
		{"narrows full-width digits", "第４２期", "第42期"},
		{"empty stays empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTitle(tc.input); got != tc.want {
				t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeTitleEquivalence(t *testing.T) {
	a := NormalizeTitle("Weekly：Issue “42”")
	b := NormalizeTitle(`Weekly: Issue "42"`)
	if a != b {
		t.Fatalf("expected equivalent titles, got %q vs %q", a, b)
	}
}
