package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "ablo/internal/platform/net/http"
	"ablo/internal/services/api/images/domain"
)

type fakeSvc struct {
	calls []domain.GenerateInput
	out   domain.GenerateOutput
	err   error
}

func (f *fakeSvc) Generate(_ context.Context, in domain.GenerateInput) (domain.GenerateOutput, error) {
	f.calls = append(f.calls, in)
	return f.out, f.err
}

func newTestRouter(f *fakeSvc) http.Handler {
	mux := chi.NewMux()
	Register(phttp.AdaptChi(mux), f)
	return mux
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGenerateSuccess(t *testing.T) {
	f := &fakeSvc{out: domain.GenerateOutput{Image: "aGVsbG8=", MimeType: "image/jpeg", Model: "m", Width: 512, Height: 512}}
	rr := post(t, newTestRouter(f), `{"prompt":"a cat wearing a hat"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}
	if len(f.calls) != 1 || f.calls[0].Prompt != "a cat wearing a hat" {
		t.Fatalf("service calls = %+v", f.calls)
	}
	if !strings.Contains(rr.Body.String(), `"mime_type":"image/jpeg"`) {
		t.Fatalf("body %q missing mime type", rr.Body.String())
	}
}

func TestGenerateValidation(t *testing.T) {
	long := strings.Repeat("x", 1001)
	longNeg := strings.Repeat("n", 501)

	cases := []struct {
		name string
		body string
	}{
		{"missing prompt", `{}`},
		{"prompt too long", `{"prompt":"` + long + `"}`},
		{"negative prompt too long", `{"prompt":"ok","negative_prompt":"` + longNeg + `"}`},
		{"width too small", `{"prompt":"ok","width":16}`},
		{"height too large", `{"prompt":"ok","height":4096}`},
		{"bad format", `{"prompt":"ok","format":"webp"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &fakeSvc{}
			rr := post(t, newTestRouter(f), c.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rr.Code, rr.Body.String())
			}
			if len(f.calls) != 0 {
				t.Fatalf("invalid input reached the service: %+v", f.calls)
			}

			var env phttp.Envelope
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatalf("envelope decode: %v", err)
			}
			if env.StatusCode != http.StatusBadRequest || env.Error == "" {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}
}
