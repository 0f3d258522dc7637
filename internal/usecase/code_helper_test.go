//go:build !integration

package usecase

import (
	"regexp"
	"testing"
)

func TestGenerateActivationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^FF-[0-9A-F]{16}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateActivationCode()
		if err != nil {
			t.Fatalf("generateActivationCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match the expected format", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"ff-0011223344556677":     "FF-0011223344556677",
		"  FF-0011223344556677 ":  "FF-0011223344556677",
		"\tff-AABBccDDeeFF0011\n": "FF-AABBCCDDEEFF0011",
		"":                        "",
		"   ":                     "",
	}
	for in, want := range cases {
		if got := normalizeCode(in); got != want {
			t.Fatalf("normalizeCode(%q) = %q, want %q", in, got, want)
		}
	}
}
