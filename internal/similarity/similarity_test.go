package similarity_test

import (
	"testing"

	"inksync/internal/similarity"
)

func TestStringSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"a", "Tailwind CSS", "ツール", "a longer sentence with words"} {
		if got := similarity.StringSimilarity(s, s); got != 1.0 {
			t.Fatalf("StringSimilarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestStringSimilarityEmpty(t *testing.T) {
	if got := similarity.StringSimilarity("", ""); got != 1.0 {
		t.Fatalf("two empty strings: got %v, want 1.0", got)
	}
	if got := similarity.StringSimilarity("", "abc"); got != 0.0 {
		t.Fatalf("empty vs non-empty: got %v, want 0.0", got)
	}
	if got := similarity.StringSimilarity("abc", ""); got != 0.0 {
		t.Fatalf("non-empty vs empty: got %v, want 0.0", got)
	}
}

func TestStringSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"Tailwind CSS", "TailwindCSS"},
		{"abc", "xyz"},
		{"短い", "長い文字列です"},
	}
	for _, pair := range pairs {
		got := similarity.StringSimilarity(pair[0], pair[1])
		if got < 0 || got > 1 {
			t.Fatalf("StringSimilarity(%q, %q) = %v, out of [0,1]", pair[0], pair[1], got)
		}
	}
}

func TestStringSimilaritySymmetric(t *testing.T) {
	a, b := "Intro to Streams", "Intro to Strings"
	if similarity.StringSimilarity(a, b) != similarity.StringSimilarity(b, a) {
		t.Fatal("expected symmetric similarity")
	}
}

func TestStringSimilarityKnownValue(t *testing.T) {
	// Distance 1 over max length 4.
	if got := similarity.StringSimilarity("abcd", "abce"); got != 0.75 {
		t.Fatalf("got %v, want 0.75", got)
	}
}

func TestNormalizeContent(t *testing.T) {
	got := similarity.NormalizeContent("  Hello,   World! 42 ", 0)
	if got != "helloworld42" {
		t.Fatalf("got %q, want %q", got, "helloworld42")
	}
}

func TestNormalizeContentKeepsCJK(t *testing.T) {
	got := similarity.NormalizeContent("日本語 テスト、ですよ。", 0)
	if got != "日本語テストですよ" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeContentWindow(t *testing.T) {
	got := similarity.NormalizeContent("abcdefghij", 4)
	if got != "abcd" {
		t.Fatalf("got %q, want %q", got, "abcd")
	}
	// Window measured in runes, not bytes.
	got = similarity.NormalizeContent("日本語テスト", 3)
	if got != "日本語" {
		t.Fatalf("got %q, want %q", got, "日本語")
	}
}

func TestContentSimilarityIgnoresFormatting(t *testing.T) {
	a := "# Title\n\nSome body text, with punctuation!"
	b := "Title Some body text with punctuation"
	if got := similarity.ContentSimilarity(a, b, 200); got != 1.0 {
		t.Fatalf("got %v, want 1.0", got)
	}
}

func TestContentSimilarityWindowBoundsCost(t *testing.T) {
	// Differences beyond the window are invisible.
	prefix := "same prefix for both documents padding padding"
	a := prefix + " tail one"
	b := prefix + " completely different tail"
	if got := similarity.ContentSimilarity(a, b, 20); got != 1.0 {
		t.Fatalf("got %v, want 1.0 within window", got)
	}
}
