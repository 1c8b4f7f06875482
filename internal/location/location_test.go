package location

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHTTPResolver_Resolve 正常返回 "城市, 国家"
func TestHTTPResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/1.2.3.4" {
			t.Errorf("path = %q, want /json/1.2.3.4", r.URL.Path)
		}
		w.Write([]byte(`{"city":"Shanghai","country":"China"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	if got := r.Resolve("1.2.3.4"); got != "Shanghai, China" {
		t.Errorf("Resolve = %q, want %q", got, "Shanghai, China")
	}
}

// TestHTTPResolver_PartialFields 只有国家时不带逗号
func TestHTTPResolver_PartialFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country":"China"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	if got := r.Resolve("1.2.3.4"); got != "China" {
		t.Errorf("Resolve = %q, want %q", got, "China")
	}
}

// TestHTTPResolver_Failures 出错一律降级为空串
func TestHTTPResolver_Failures(t *testing.T) {
	// 非 200
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	if got := r.Resolve("1.2.3.4"); got != "" {
		t.Errorf("non-200: Resolve = %q, want empty", got)
	}

	// 坏 JSON
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{`))
	}))
	defer bad.Close()
	if got := NewHTTPResolver(bad.URL).Resolve("1.2.3.4"); got != "" {
		t.Errorf("bad json: Resolve = %q, want empty", got)
	}

	// 空 IP 不发请求
	if got := r.Resolve(""); got != "" {
		t.Errorf("empty ip: Resolve = %q, want empty", got)
	}

	// 服务不可达
	dead := NewHTTPResolver("http://127.0.0.1:1")
	if got := dead.Resolve("1.2.3.4"); got != "" {
		t.Errorf("unreachable: Resolve = %q, want empty", got)
	}
}

func TestNoop(t *testing.T) {
	if got := (Noop{}).Resolve("1.2.3.4"); got != "" {
		t.Errorf("Noop.Resolve = %q, want empty", got)
	}
}
