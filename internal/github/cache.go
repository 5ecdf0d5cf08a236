package github

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/repolens/internal/contract"
)

// currentCacheVersion defines the version of the cached response format
const currentCacheVersion = 2

// cachedHeaders survive a cache round trip. Link drives pagination.
var cachedHeaders = []string{"Content-Type", "Link"}

// cachedResponse is the stored form of a successful GET.
type cachedResponse struct {
	Header map[string]string `json:"header"`
	Body   []byte            `json:"body"`
}

// cachingTransport serves GET responses from a CacheStore and stores fresh
// 200 responses. Contents responses always go to the network so a following
// update sees the current blob sha. Cache failures never fail the request.
type cachingTransport struct {
	base        http.RoundTripper
	store       contract.CacheStore
	ttl         time.Duration
	fingerprint string
	now         func() time.Time
}

// RoundTrip implements http.RoundTripper.
func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.store == nil || req.Method != http.MethodGet || strings.Contains(req.URL.Path, "/contents/") {
		return t.base.RoundTrip(req)
	}

	key := t.cacheKey(req.URL.String())
	if resp := t.checkCacheHit(req, key); resp != nil {
		return resp, nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response of %s: %w", req.URL.Path, err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := cachedResponse{Header: map[string]string{}, Body: body}
	for _, name := range cachedHeaders {
		if v := resp.Header.Get(name); v != "" {
			entry.Header[name] = v
		}
	}
	data, err := json.Marshal(entry)
	if err == nil {
		err = t.store.Set(key, data, currentCacheVersion, t.now().Unix())
	}
	if err != nil {
		contract.LogWarn("Cannot cache response of "+req.URL.Path, err)
	}
	return resp, nil
}

// checkCacheHit attempts to retrieve and validate a cached response
func (t *cachingTransport) checkCacheHit(req *http.Request, key string) *http.Response {
	data, version, ts, err := t.store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion {
		return nil
	}
	if t.now().Sub(time.Unix(ts, 0)) > t.ttl {
		return nil // Stale
	}
	var entry cachedResponse
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	header := http.Header{}
	for name, v := range entry.Header {
		header.Set(name, v)
	}
	header.Set("X-From-Cache", "1") // go-github skips rate tracking for these
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}

// cacheKey binds a cached response to the caller identity and the full URL.
func (t *cachingTransport) cacheKey(rawURL string) string {
	key := fmt.Sprintf("%s:%s", t.fingerprint, rawURL)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
