package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// NewRequestWithURLParams creates an HTTP request carrying chi URL
// parameters, for testing handlers that read path values through
// chi.URLParam().
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/reconciliation/2025-06-30",
//	    map[string]string{"date": "2025-06-30"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// NewRequestWithQueryParams creates an HTTP request with query parameters,
// for testing handlers that read r.URL.Query().
//
//	req := testutil.NewRequestWithQueryParams(
//	    http.MethodPost,
//	    "/api/reconciliation/run",
//	    map[string]string{"date": "2025-06-30"},
//	)
func NewRequestWithQueryParams(method, path string, queryParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(queryParams) > 0 {
		q := req.URL.Query()
		for key, value := range queryParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req
}
