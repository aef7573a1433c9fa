package pinata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "ablo/internal/platform/errors"
)

func TestPinJSON(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody pinJSONRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"IpfsHash":"QmMeta","PinSize":42,"Timestamp":"2026-08-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIURL: srv.URL, JWT: "jwt"})
	res, err := c.PinJSON(context.Background(), []byte(`{"name":"doc"}`), PinMeta{Name: "doc-pin"})
	if err != nil {
		t.Fatalf("PinJSON: %v", err)
	}

	if gotPath != "/pinning/pinJSONToIPFS" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer jwt" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if string(gotBody.PinataContent) != `{"name":"doc"}` {
		t.Fatalf("pinataContent = %s", gotBody.PinataContent)
	}
	if gotBody.PinataMetadata == nil || gotBody.PinataMetadata.Name != "doc-pin" {
		t.Fatalf("pinataMetadata = %+v", gotBody.PinataMetadata)
	}
	if res.IpfsHash != "QmMeta" || res.PinSize != 42 {
		t.Fatalf("result = %+v", res)
	}
}

func TestPinFileMultipart(t *testing.T) {
	var gotFile []byte
	var gotMeta string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart parse: %v", err)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			gotFile, _ = io.ReadAll(f)
			_ = f.Close()
		}
		gotMeta = r.FormValue("pinataMetadata")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmFile","PinSize":9}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIURL: srv.URL})
	res, err := c.PinFile(context.Background(), []byte("image bytes"), "img.png", PinMeta{Name: "img-pin"})
	if err != nil {
		t.Fatalf("PinFile: %v", err)
	}
	if string(gotFile) != "image bytes" {
		t.Fatalf("uploaded file = %q", gotFile)
	}
	var meta PinMeta
	if err := json.Unmarshal([]byte(gotMeta), &meta); err != nil || meta.Name != "img-pin" {
		t.Fatalf("pinataMetadata = %q (%v)", gotMeta, err)
	}
	if res.IpfsHash != "QmFile" {
		t.Fatalf("result = %+v", res)
	}
}

func TestPinRejectsMissingHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIURL: srv.URL})
	if _, err := c.PinJSON(context.Background(), []byte(`{}`), PinMeta{}); !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("code = %v, want upstream", perr.CodeOf(err))
	}
}

func TestFetchAndHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/QmHere":
			_, _ = w.Write([]byte("content"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Gateway: srv.URL})

	got, err := c.Fetch(context.Background(), "QmHere")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "content" {
		t.Fatalf("Fetch = %q", got)
	}

	if _, err := c.Fetch(context.Background(), "QmGone"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Fetch(missing) code = %v, want not found", perr.CodeOf(err))
	}

	ok, err := c.Head(context.Background(), "QmHere")
	if err != nil || !ok {
		t.Fatalf("Head(present) = %v, %v", ok, err)
	}
	ok, err = c.Head(context.Background(), "QmGone")
	if err != nil || ok {
		t.Fatalf("Head(missing) = %v, %v", ok, err)
	}
}

func TestUnpinToleratesMissing(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Options{APIURL: srv.URL})
	// a pin that is already gone is not an error
	if err := c.Unpin(context.Background(), "QmGone"); err != nil {
		t.Fatalf("Unpin(missing): %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/pinning/unpin/QmGone" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
}

func TestGatewayURL(t *testing.T) {
	c := NewClient(Options{})
	if got := c.GatewayURL("QmX"); got != "https://gateway.pinata.cloud/ipfs/QmX" {
		t.Fatalf("default gateway url = %q", got)
	}

	c = NewClient(Options{Gateway: "mygw.mypinata.cloud"})
	if got := c.GatewayURL("QmX"); got != "https://mygw.mypinata.cloud/ipfs/QmX" {
		t.Fatalf("dedicated gateway url = %q", got)
	}
}

func TestPingAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/testAuthentication" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Options{APIURL: srv.URL, JWT: "bad"})
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("Ping succeeded with rejected credentials")
	}
}
