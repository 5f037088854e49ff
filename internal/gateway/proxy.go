package gateway

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
)

// routingKey picks the string a request is routed by: the first domain
// token of ?domains=, falling back to a single ?domain= query value and
// then to the request path, so every endpoint the HTTP
// adapter exposes has a deterministic routing key even without a domain
// parameter.
func routingKey(r *http.Request) string {
	if raw := r.URL.Query().Get("domains"); raw != "" {
		if first := strings.SplitN(raw, ",", 2)[0]; first != "" {
			return strings.TrimSpace(first)
		}
	}
	if raw := r.URL.Query().Get("domain"); raw != "" {
		return raw
	}
	return r.URL.Path
}

// NewReverseProxyHandler wraps local — the HTTP adapter serving this
// process's own Allocator — with rendezvous-hash routing over router's
// instance set. A request whose routing key maps to selfAddr (or when
// selfAddr is unset) is served by local directly; any other request is
// reverse-proxied to the owning peer over HTTP, so a client can talk to
// any instance in the deployment and still reach the one that owns a
// given domain most of the time.
//
// Proxied requests are logged through logger at failure only, matching
// the adapter's own error-logging style rather than introducing a
// second logging convention for this one handler.
func NewReverseProxyHandler(router *Router, selfAddr string, local http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	var mu sync.Mutex
	proxies := map[string]*httputil.ReverseProxy{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := router.Lookup(routingKey(r))
		if target == "" || selfAddr == "" || target == selfAddr {
			local.ServeHTTP(w, r)
			return
		}

		mu.Lock()
		proxy, ok := proxies[target]
		if !ok {
			u, err := url.Parse("http://" + target)
			if err != nil {
				mu.Unlock()
				logger.Printf("gateway: invalid peer address %q: %v", target, err)
				local.ServeHTTP(w, r)
				return
			}
			proxy = httputil.NewSingleHostReverseProxy(u)
			proxy.ErrorLog = logger
			proxies[target] = proxy
		}
		mu.Unlock()
		proxy.ServeHTTP(w, r)
	})
}
