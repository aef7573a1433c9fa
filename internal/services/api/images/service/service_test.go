package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	hf "ablo/internal/adapters/inference/huggingface"
	perr "ablo/internal/platform/errors"
	"ablo/internal/services/api/images/domain"
)

type fakeInference struct {
	calls []hf.GenerateParams
	out   hf.Image
	err   error
}

func (f *fakeInference) Generate(_ context.Context, p hf.GenerateParams) (hf.Image, error) {
	f.calls = append(f.calls, p)
	return f.out, f.err
}

func (f *fakeInference) Model() string { return "flux-schnell" }

func encodeTestImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeOutput(t *testing.T, out domain.GenerateOutput) (image.Image, string) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	return img, format
}

func TestGenerateDefaultsDimensions(t *testing.T) {
	f := &fakeInference{out: hf.Image{Bytes: encodeTestImage(t, "jpeg"), MimeType: "image/jpeg"}}
	s := New(f)

	out, err := s.Generate(context.Background(), domain.GenerateInput{Prompt: "a cat wearing a hat"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(f.calls) != 1 || f.calls[0].Width != 512 || f.calls[0].Height != 512 {
		t.Fatalf("inference params = %+v", f.calls)
	}
	if out.Width != 512 || out.Height != 512 || out.Model != "flux-schnell" {
		t.Fatalf("output = %+v", out)
	}
}

func TestGeneratePassesProviderBytesThrough(t *testing.T) {
	src := encodeTestImage(t, "jpeg")
	f := &fakeInference{out: hf.Image{Bytes: src, MimeType: "image/jpeg"}}
	s := New(f)

	out, err := s.Generate(context.Background(), domain.GenerateInput{Prompt: "ok"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.MimeType != "image/jpeg" {
		t.Fatalf("mime = %q", out.MimeType)
	}
	raw, _ := base64.StdEncoding.DecodeString(out.Image)
	if !bytes.Equal(raw, src) {
		t.Fatalf("bytes were re-encoded without a format request")
	}
}

func TestGenerateConvertsToRequestedFormat(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		format     string
		wantMime   string
		wantFormat string
	}{
		{name: "jpeg to png", provider: "jpeg", format: "png", wantMime: "image/png", wantFormat: "png"},
		{name: "png to jpeg", provider: "png", format: "jpeg", wantMime: "image/jpeg", wantFormat: "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeInference{out: hf.Image{
				Bytes:    encodeTestImage(t, tt.provider),
				MimeType: "image/" + tt.provider,
			}}
			s := New(f)

			out, err := s.Generate(context.Background(), domain.GenerateInput{Prompt: "ok", Format: tt.format})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if out.MimeType != tt.wantMime {
				t.Fatalf("mime = %q, want %q", out.MimeType, tt.wantMime)
			}
			if _, format := decodeOutput(t, out); format != tt.wantFormat {
				t.Fatalf("decoded format = %q, want %q", format, tt.wantFormat)
			}
		})
	}
}

func TestGenerateSkipsConversionWhenFormatMatches(t *testing.T) {
	src := encodeTestImage(t, "png")
	f := &fakeInference{out: hf.Image{Bytes: src, MimeType: "image/png"}}
	s := New(f)

	out, err := s.Generate(context.Background(), domain.GenerateInput{Prompt: "ok", Format: "png"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(out.Image)
	if !bytes.Equal(raw, src) {
		t.Fatalf("matching format was re-encoded")
	}
}

func TestGenerateRejectsUndecodableProviderContent(t *testing.T) {
	f := &fakeInference{out: hf.Image{Bytes: []byte("not an image"), MimeType: "image/jpeg"}}
	s := New(f)

	_, err := s.Generate(context.Background(), domain.GenerateInput{Prompt: "ok", Format: "png"})
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("code = %v, want upstream", perr.CodeOf(err))
	}
}
