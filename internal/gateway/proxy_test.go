package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverseProxyHandlerServesLocallyWhenSelfOwnsKey(t *testing.T) {
	local := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("local"))
	})

	// Single instance: every key routes to "self".
	router, err := NewRouter([]string{"self"})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	handler := NewReverseProxyHandler(router, "self", local, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/generate?domains=orders", nil)
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "local" {
		t.Fatalf("expected local handling, got status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestReverseProxyHandlerForwardsToOwningPeer(t *testing.T) {
	var sawPath string
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("peer"))
	}))
	defer peer.Close()

	local := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("local handler should not be invoked when a peer owns the key")
	})

	router, err := NewRouter([]string{peer.Listener.Addr().String(), "self"})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	// Find a routing key the peer (not self) owns.
	var key string
	for i := 0; i < 1000; i++ {
		k := "domain-" + string(rune('a'+i%26)) + string(rune(i))
		if router.Lookup(k) == peer.Listener.Addr().String() {
			key = k
			break
		}
	}
	if key == "" {
		t.Fatal("could not find a routing key owned by the peer instance")
	}

	handler := NewReverseProxyHandler(router, "self", local, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/generate?domains="+key, nil)
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "peer" {
		t.Fatalf("expected proxied response, got status=%d body=%q", rr.Code, rr.Body.String())
	}
	if sawPath != "/generate" {
		t.Fatalf("peer observed path %q, want /generate", sawPath)
	}
}
