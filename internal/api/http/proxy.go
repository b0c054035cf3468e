package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/google/uuid"
)

var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Proxy forwards every /api/ request the storefront does not model itself
// (admin CRUD, statistics, ...) to the remote API with the stored session.
type Proxy struct {
	target string
	client storage.HTTPClient
	auth   service.Authenticator
	logger *slog.Logger
}

func NewProxy(target string, client storage.HTTPClient, auth service.Authenticator, log *slog.Logger) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Proxy{target: strings.TrimRight(target, "/"), client: client, auth: auth, logger: log}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := p.target + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}
	p.logger.Debug("proxy", "method", r.Method, "path", r.URL.Path, "target", url)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		p.logger.Error("failed to create proxy request", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	copyHeaders(req.Header, r.Header)
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if req.Header.Get("Authorization") == "" {
		if token, ok := p.auth.Token(r.Context()); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		metrics.ObserveAPICall("proxy", 0, time.Since(start))
		p.logger.Error("failed to proxy", "target", p.target, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	metrics.ObserveAPICall("proxy", resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		p.auth.HandleUnauthorized(r.Context())
	}

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Warn("failed to copy proxy response", "error", err)
	}
}

func copyHeaders(dst, src http.Header) {
	for k, v := range src {
		if hopHeaders[k] {
			continue
		}
		dst[k] = append([]string(nil), v...)
	}
}
