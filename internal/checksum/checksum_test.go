package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	if Sum([]byte("a")) != Sum([]byte("a")) {
		t.Error("Sum not deterministic")
	}
	if len(Sum(nil)) != 64 {
		t.Errorf("len = %d, want 64", len(Sum(nil)))
	}
}

func TestFingerprint_PartBoundaries(t *testing.T) {
	a := Fingerprint([]byte("ab"), []byte("c"))
	b := Fingerprint([]byte("a"), []byte("bc"))
	if a == b {
		t.Error("fingerprint ignores part boundaries")
	}
	if a != Fingerprint([]byte("ab"), []byte("c")) {
		t.Error("fingerprint not deterministic")
	}
}
