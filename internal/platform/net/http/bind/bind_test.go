package bind

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "ablo/internal/platform/errors"
)

type generateReq struct {
	Prompt         string `json:"prompt"          validate:"required,max=20"`
	NegativePrompt string `json:"negative_prompt" validate:"omitempty,max=10"`
	Width          int    `json:"width"           validate:"omitempty,min=64"`
}

func postReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestParseJSONValid(t *testing.T) {
	got, err := ParseJSON[generateReq](postReq(`{"prompt":"a cat","width":512}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prompt != "a cat" || got.Width != 512 {
		t.Fatalf("parsed = %+v", got)
	}
}

func TestParseJSONEmptyBody(t *testing.T) {
	_, err := ParseJSON[generateReq](postReq(""))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want JSON code", err)
	}
}

func TestParseJSONEmptyBodyTolerantForGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/registrations", nil)
	got, err := ParseJSON[generateReq](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prompt != "" {
		t.Fatalf("parsed = %+v, want zero", got)
	}
}

func TestParseJSONUnknownField(t *testing.T) {
	_, err := ParseJSON[generateReq](postReq(`{"prompt":"ok","seed":42}`))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want JSON code", err)
	}
}

func TestParseJSONTrailingData(t *testing.T) {
	_, err := ParseJSON[generateReq](postReq(`{"prompt":"ok"}{"prompt":"again"}`))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want JSON code", err)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON[generateReq](postReq(`{"prompt":`))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want JSON code", err)
	}
}

func TestParseJSONValidationUsesJSONTagNames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing required", body: `{}`, want: "prompt"},
		{name: "max on prompt", body: `{"prompt":"` + strings.Repeat("x", 21) + `"}`, want: "prompt must be at most 20"},
		{name: "max on negative prompt", body: `{"prompt":"ok","negative_prompt":"xxxxxxxxxxx"}`, want: "negative_prompt must be at most 10"},
		{name: "min on width", body: `{"prompt":"ok","width":16}`, want: "width must be at least 64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON[generateReq](postReq(tt.body))
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("err = %v, want validation code", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("message %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseJSONMaxBytes(t *testing.T) {
	big := `{"prompt":"` + strings.Repeat("x", 100) + `"}`
	_, err := ParseJSON[generateReq](postReq(big), JSONOptions{MaxBytes: 16, DisallowUnknown: true})
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want JSON code for truncated body", err)
	}
}

func TestValidationFieldAndMessage(t *testing.T) {
	err := Get().Validator.Struct(generateReq{})
	field, msg := ValidationFieldAndMessage(err)
	if field != "prompt" || msg == "" {
		t.Fatalf("field = %q, msg = %q", field, msg)
	}

	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil error should map to empty, got %q %q", f, m)
	}
}
