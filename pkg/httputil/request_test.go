package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestParseJSON(t *testing.T) {
	type payload struct {
		Path string `json:"path"`
	}

	t.Run("valid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"path":"/configuration/hosts"}`))
		var p payload
		if err := ParseJSON(req, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Path != "/configuration/hosts" {
			t.Errorf("expected path to be parsed, got %q", p.Path)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{not json`))
		var p payload
		if err := ParseJSON(req, &p); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestParseJSONOrError(t *testing.T) {
	type payload struct {
		Path string `json:"path"`
	}

	t.Run("writes 400 on invalid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		var p payload
		if ParseJSONOrError(w, req, &p) {
			t.Error("expected false for invalid JSON")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns true on valid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"path":"/x"}`))
		w := httptest.NewRecorder()
		var p payload
		if !ParseJSONOrError(w, req, &p) {
			t.Error("expected true for valid JSON")
		}
	})
}

func TestParsePathInt(t *testing.T) {
	t.Run("valid integer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs/3", nil)
		req = mux.SetURLVars(req, map[string]string{"index": "3"})
		val, err := ParsePathInt(req, "index")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if val != 3 {
			t.Errorf("expected 3, got %d", val)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs", nil)
		if _, err := ParsePathInt(req, "index"); err == nil {
			t.Error("expected error for missing parameter")
		}
	})

	t.Run("non-integer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs/abc", nil)
		req = mux.SetURLVars(req, map[string]string{"index": "abc"})
		if _, err := ParsePathInt(req, "index"); err == nil {
			t.Error("expected error for non-integer")
		}
	})
}

func TestParsePathString(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/modules/iam", nil)
		req = mux.SetURLVars(req, map[string]string{"module": "iam"})
		val, err := ParsePathString(req, "module")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if val != "iam" {
			t.Errorf("expected iam, got %q", val)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/modules", nil)
		if _, err := ParsePathString(req, "module"); err == nil {
			t.Error("expected error for missing parameter")
		}
	})
}

func TestParseQueryInt(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs?limit=12", nil)
		val, err := ParseQueryInt(req, "limit", 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if val != 12 {
			t.Errorf("expected 12, got %d", val)
		}
	})

	t.Run("default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs", nil)
		val, err := ParseQueryInt(req, "limit", 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if val != 8 {
			t.Errorf("expected default 8, got %d", val)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tabs?limit=lots", nil)
		if _, err := ParseQueryInt(req, "limit", 8); err == nil {
			t.Error("expected error for invalid integer")
		}
	})
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/access/route?path=/configuration/hosts", nil)
	if got := ParseQueryString(req, "path", "/"); got != "/configuration/hosts" {
		t.Errorf("expected query value, got %q", got)
	}
	if got := ParseQueryString(req, "missing", "/"); got != "/" {
		t.Errorf("expected default, got %q", got)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest("GET", "/menus?flat=true", nil)
	val, err := ParseQueryBool(req, "flat", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !val {
		t.Error("expected true")
	}

	val, err = ParseQueryBool(req, "missing", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !val {
		t.Error("expected default true")
	}

	req = httptest.NewRequest("GET", "/menus?flat=maybe", nil)
	if _, err := ParseQueryBool(req, "flat", false); err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestRequireNonEmpty(t *testing.T) {
	t.Run("empty writes 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		if RequireNonEmpty(w, "", "path") {
			t.Error("expected false for empty value")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("non-empty passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		if !RequireNonEmpty(w, "/workbench", "path") {
			t.Error("expected true for non-empty value")
		}
	})
}

func TestRequirePositive(t *testing.T) {
	w := httptest.NewRecorder()
	if RequirePositive(w, 0, "limit") {
		t.Error("expected false for zero")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	if !RequirePositive(w, 5, "limit") {
		t.Error("expected true for positive value")
	}
}
