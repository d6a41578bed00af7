package bech32

import (
	"bytes"
	"strings"
	"testing"
)

func TestBech32EncodeDecode(t *testing.T) {
	payload := []byte("test-payload")

	raw, err := Encode("clasp", payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if !strings.HasPrefix(string(raw), "clasp1") {
		t.Fatalf("invalid encoding: %q", raw)
	}

	hrp, got, err := Decode(string(raw))
	if err != nil {
		t.Fatal(err)
	}
	if hrp != "clasp" {
		t.Fatalf("invalid human readable part: %q", hrp)
	}
	if !bytes.Equal(payload, got) {
		t.Logf("want %d", payload)
		t.Logf("got  %d", got)
		t.Fatal("invalid decode")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, _, err := Decode("not a bech32 string"); err == nil {
		t.Fatal("decoding garbage must fail")
	}
}
