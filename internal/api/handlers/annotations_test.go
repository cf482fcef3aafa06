package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/testutil"
)

// newAnnotationRequest builds a request carrying date and key URL
// parameters with an optional JSON body. Deal keys contain spaces, so the
// path segment must be escaped for the request line.
func newAnnotationRequest(method, date, key, body string) *http.Request {
	target := "/api/reconciliation/" + date + "/annotations/" + url.PathEscape(key)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("date", date)
	rctx.URLParams.Add("key", key)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAnnotationHandler(t *testing.T) {
	setupHandler := func(t *testing.T) *AnnotationHandler {
		t.Helper()
		db := testutil.SetupTestDB(t)
		return NewAnnotationHandler(testutil.NewTestAnnotationService(t, db))
	}

	t.Run("put then get round-trips the comment", func(t *testing.T) {
		handler := setupHandler(t)

		putReq := newAnnotationRequest(http.MethodPut, "2025-06-30", "harbor gate prtnrs",
			`{"comment": "checked against desk marks"}`)
		putW := httptest.NewRecorder()
		handler.Set(putW, putReq)

		if putW.Code != http.StatusOK {
			t.Fatalf("Expected 200 from Set, got %d: %s", putW.Code, putW.Body.String())
		}

		getReq := newAnnotationRequest(http.MethodGet, "2025-06-30", "harbor gate prtnrs", "")
		getW := httptest.NewRecorder()
		handler.Get(getW, getReq)

		if getW.Code != http.StatusOK {
			t.Fatalf("Expected 200 from Get, got %d: %s", getW.Code, getW.Body.String())
		}

		var annotation model.Annotation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(getW.Body).Decode(&annotation)

		if annotation.Comment != "checked against desk marks" {
			t.Errorf("Expected comment to round-trip, got %q", annotation.Comment)
		}
	})

	t.Run("get returns 404 for an unannotated deal", func(t *testing.T) {
		handler := setupHandler(t)

		req := newAnnotationRequest(http.MethodGet, "2025-06-30", "no such deal", "")
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("put rejects a blank comment", func(t *testing.T) {
		handler := setupHandler(t)

		req := newAnnotationRequest(http.MethodPut, "2025-06-30", "harbor gate prtnrs",
			`{"comment": "   "}`)
		w := httptest.NewRecorder()
		handler.Set(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("put rejects a malformed body", func(t *testing.T) {
		handler := setupHandler(t)

		req := newAnnotationRequest(http.MethodPut, "2025-06-30", "harbor gate prtnrs", "{")
		w := httptest.NewRecorder()
		handler.Set(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("list returns annotations keyed by deal", func(t *testing.T) {
		handler := setupHandler(t)

		for key, comment := range map[string]string{
			"harbor gate prtnrs": "first",
			"crestline holdings": "second",
		} {
			req := newAnnotationRequest(http.MethodPut, "2025-06-30", key,
				`{"comment": "`+comment+`"}`)
			w := httptest.NewRecorder()
			handler.Set(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200 from Set, got %d: %s", w.Code, w.Body.String())
			}
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/reconciliation/2025-06-30/annotations",
			map[string]string{"date": "2025-06-30"})
		w := httptest.NewRecorder()
		handler.List(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var annotations map[string]model.Annotation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&annotations)

		if len(annotations) != 2 {
			t.Errorf("Expected 2 annotations, got %d", len(annotations))
		}
		if annotations["harbor gate prtnrs"].Comment != "first" {
			t.Errorf("Expected comment 'first', got %q", annotations["harbor gate prtnrs"].Comment)
		}
	})
}
