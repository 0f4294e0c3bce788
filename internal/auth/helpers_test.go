package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRequestWithAuth(t *testing.T, header string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}
