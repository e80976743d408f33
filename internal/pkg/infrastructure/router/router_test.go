package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestCorsPreflightAllowsSessionHeader(t *testing.T) {
	is := is.New(t)

	r := New("aquavise-test")
	r.Patch("/api/v0/equipment/{device}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v0/equipment/aerator", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", SessionHeader)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	is.Equal(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	is.True(w.Header().Get("Access-Control-Allow-Headers") != "")
}

func TestOnlyConfiguredOriginsAreAllowed(t *testing.T) {
	is := is.New(t)

	r := New("aquavise-test", "https://farm.example.org")
	r.Get("/api/v0/trends", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	get := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v0/trends", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set(SessionHeader, "s1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("https://farm.example.org")
	is.Equal(w.Header().Get("Access-Control-Allow-Origin"), "https://farm.example.org")
	is.Equal(w.Header().Get("Access-Control-Expose-Headers"), http.CanonicalHeaderKey(SessionHeader))
	is.Equal(w.Header().Get("Access-Control-Allow-Credentials"), "")

	w = get("https://elsewhere.example.org")
	is.Equal(w.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestPanicsAreRecovered(t *testing.T) {
	is := is.New(t)

	r := New("aquavise-test")
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	is.Equal(w.Code, http.StatusInternalServerError)
}
