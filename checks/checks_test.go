package checks

import "testing"

func TestIsPalindromic(t *testing.T) {
	ecori := IsPalindromic("GAATTC")
	if ecori != true {
		t.Errorf("IsPalindromic failed to call EcoRI a palindrome")
	}
	bsai := IsPalindromic("GGTCTC")
	if bsai != false {
		t.Errorf("IsPalindromic failed call BsaI NOT a palindrome")
	}
}

func TestGcContent(t *testing.T) {
	got := GcContent("ACGT")
	if got != 50 {
		t.Errorf("GcContent(\"ACGT\") = %f, want 50", got)
	}
	got = GcContent("AAAATTTT")
	if got != 0 {
		t.Errorf("GcContent(\"AAAATTTT\") = %f, want 0", got)
	}
}

func TestIsDNA(t *testing.T) {
	if !IsDNA("ACGTACGT") {
		t.Errorf("IsDNA(\"ACGTACGT\") = false, want true")
	}
	if IsDNA("ACGU") {
		t.Errorf("IsDNA(\"ACGU\") = true, want false")
	}
}
