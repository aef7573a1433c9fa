package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "ablo/internal/platform/net/http"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestRouter(d Deps) stdhttp.Handler {
	mux := chi.NewMux()
	Register(phttp.AdaptChi(mux), d)
	return mux
}

func get(t *testing.T, h stdhttp.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return env.Data
}

func TestHealth(t *testing.T) {
	h := newTestRouter(Deps{ServiceName: "ablo-api", StartedAt: time.Now().Add(-time.Minute)})
	rr := get(t, h, "/health")

	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	data := decodeData[HealthResponse](t, rr)
	if !data.OK || data.Service != "ablo-api" {
		t.Fatalf("health = %+v", data)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name    string
		pinning any
		chain   any
		want    string
	}{
		{name: "all ok", pinning: fakePinger{}, chain: fakePinger{}, want: "ok"},
		{name: "pinning down", pinning: fakePinger{err: errors.New("pinata unreachable")}, chain: fakePinger{}, want: "fail"},
		{name: "chain down", pinning: fakePinger{}, chain: fakePinger{err: errors.New("story unreachable")}, want: "fail"},
		{name: "no deps wired", pinning: nil, chain: nil, want: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(Deps{ServiceName: "ablo-api", StartedAt: time.Now(), Pinning: tt.pinning, Chain: tt.chain})
			rr := get(t, h, "/ready")

			if rr.Code != stdhttp.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			data := decodeData[ReadyResponse](t, rr)
			if data.Status != tt.want {
				t.Fatalf("status = %q, want %q (checks %+v)", data.Status, tt.want, data.Checks)
			}
			if len(data.Checks) != 2 || data.Checks[0].Name != "pinning" || data.Checks[1].Name != "chain" {
				t.Fatalf("checks = %+v", data.Checks)
			}
		})
	}
}

func TestReadyReportsFailureCause(t *testing.T) {
	h := newTestRouter(Deps{
		ServiceName: "ablo-api",
		StartedAt:   time.Now(),
		Pinning:     fakePinger{err: errors.New("pinata unreachable")},
		Chain:       fakePinger{},
	})
	data := decodeData[ReadyResponse](t, get(t, h, "/ready"))

	if data.Checks[0].Status != "fail" || data.Checks[0].Error != "pinata unreachable" {
		t.Fatalf("pinning check = %+v", data.Checks[0])
	}
	if data.Checks[1].Status != "ok" {
		t.Fatalf("chain check = %+v", data.Checks[1])
	}
}

func TestService(t *testing.T) {
	started := time.Now().Add(-5 * time.Minute)
	h := newTestRouter(Deps{ServiceName: "ablo-api", StartedAt: started})
	rr := get(t, h, "/service")

	data := decodeData[ServiceResponse](t, rr)
	if data.Name != "ablo-api" || data.Uptime < 299 {
		t.Fatalf("service = %+v", data)
	}
}

func TestVersion(t *testing.T) {
	h := newTestRouter(Deps{ServiceName: "ablo-api", StartedAt: time.Now()})
	rr := get(t, h, "/version")

	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}
