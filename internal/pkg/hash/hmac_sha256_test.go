package hash

import (
	"bytes"
	"testing"
)

func TestHMACSHA256Deterministic(t *testing.T) {
	h := NewHMACSHA256("test-secret")

	first, err := h.Hash("483920")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("483920")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("same input produced different digests: %q vs %q", first, second)
	}
}

func TestHMACSHA256SecretChangesDigest(t *testing.T) {
	a, _ := NewHMACSHA256("secret-a").Hash("483920")
	b, _ := NewHMACSHA256("secret-b").Hash("483920")

	if bytes.Equal(a, b) {
		t.Fatal("different secrets produced the same digest")
	}
}

func TestHMACSHA256Verify(t *testing.T) {
	h := NewHMACSHA256("test-secret")

	digest, err := h.Hash("007231")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !h.Verify(string(digest), "007231") {
		t.Fatal("Verify rejected the correct code")
	}
	if h.Verify(string(digest), "007232") {
		t.Fatal("Verify accepted a wrong code")
	}
	if h.Verify("", "007231") {
		t.Fatal("Verify accepted an empty digest")
	}
}
