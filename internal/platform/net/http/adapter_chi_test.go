package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func echoHandler(body string) Handler {
	return Handle(func(r *stdhttp.Request) Response { return OK(body) })
}

func TestAdaptChiMethods(t *testing.T) {
	mux := chi.NewMux()
	r := AdaptChi(mux)

	r.Get("/g", echoHandler("get"))
	r.Post("/p", echoHandler("post"))
	r.Put("/u", echoHandler("put"))
	r.Delete("/d", echoHandler("delete"))

	tests := []struct {
		method string
		path   string
	}{
		{stdhttp.MethodGet, "/g"},
		{stdhttp.MethodPost, "/p"},
		{stdhttp.MethodPut, "/u"},
		{stdhttp.MethodDelete, "/d"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		if rr.Code != stdhttp.StatusOK {
			t.Fatalf("%s %s status = %d", tt.method, tt.path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPost, "/g", nil))
	if rr.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d, want 405", rr.Code)
	}
}

func TestAdaptChiRouteAndGroup(t *testing.T) {
	mux := chi.NewMux()
	r := AdaptChi(mux)

	r.Route("/assets", func(sub Router) {
		sub.Post("/verify", echoHandler("verify"))
		sub.Group(func(g Router) {
			g.Get("/registrations/{id}", echoHandler("snap"))
		})
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPost, "/assets/verify", nil))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("nested route status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/assets/registrations/abc", nil))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("grouped route status = %d", rr.Code)
	}
}

func TestAdaptChiUse(t *testing.T) {
	mux := chi.NewMux()
	r := AdaptChi(mux)

	r.Use(func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			w.Header().Set("X-Stack", "on")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/ping", echoHandler("pong"))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/ping", nil))
	if rr.Header().Get("X-Stack") != "on" {
		t.Fatalf("middleware not applied")
	}
}
