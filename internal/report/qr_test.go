package report

import (
	"bytes"
	"testing"
)

func TestCaptureRefURI(t *testing.T) {
	ref := CaptureRef{Digest: " 0123456789ABCDEF ", Messages: 42, Pass: true}
	uri, err := ref.URI()
	if err != nil {
		t.Fatalf("URI: %v", err)
	}
	if uri != "mavgate:capture/0123456789abcdef?messages=42&pass=true" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestCaptureRefURIRejectsBadDigests(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "blank", digest: "   "},
		{name: "not hex", digest: "xyz123"},
		{name: "odd length", digest: "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := (CaptureRef{Digest: tc.digest}).URI(); err == nil {
				t.Fatalf("URI accepted %q", tc.digest)
			}
		})
	}
}

func TestCaptureRefEncodeQR(t *testing.T) {
	ref := CaptureRef{Digest: "deadbeef", Messages: 3}
	png, err := ref.EncodeQR(0)
	if err != nil {
		t.Fatalf("EncodeQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG (starts % X)", png[:4])
	}

	if _, err := (CaptureRef{}).EncodeQR(128); err == nil {
		t.Fatalf("EncodeQR accepted empty reference")
	}
}
