// Package session owns everything that lives for one import: the object URL
// registry, the parsed collection, and the catalog rows behind it.
package session

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"xr-archive/internal/archive"
)

var ErrRevoked = errors.New("session: object url revoked")

// Releaser is implemented by payloads that hold something to give back
// (spooled upload copies) once their URL is revoked.
type Releaser interface {
	Release() error
}

// Registry plays the part of the browser's object URL registry: it hands out
// URLs for payloads and forgets them, one import's worth at a time or all at once.
type Registry struct {
	prefix string

	mu      sync.RWMutex
	handles map[string]archive.Payload
}

func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix, handles: make(map[string]archive.Payload)}
}

func (r *Registry) CreateObjectURL(p archive.Payload) string {
	token := uuid.NewString()

	r.mu.Lock()
	r.handles[token] = p
	r.mu.Unlock()

	return r.prefix + token
}

// Resolve accepts a full URL or a bare token.
func (r *Registry) Resolve(url string) (archive.Payload, error) {
	token := strings.TrimPrefix(url, r.prefix)

	r.mu.RLock()
	p, ok := r.handles[token]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrRevoked
	}
	return p, nil
}

// RevokeAll invalidates every URL handed out so far and releases the payloads
// behind them. It returns the number of revoked URLs.
func (r *Registry) RevokeAll() int {
	r.mu.Lock()
	old := r.handles
	r.handles = make(map[string]archive.Payload)
	r.mu.Unlock()

	release(old)
	return len(old)
}

// URLs lists every URL that is currently valid, in no particular order.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]string, 0, len(r.handles))
	for token := range r.handles {
		urls = append(urls, r.prefix+token)
	}
	return urls
}

// Revoke invalidates the given URLs (or bare tokens) and releases their
// payloads. Unknown or already revoked URLs are skipped.
func (r *Registry) Revoke(urls ...string) int {
	gone := make(map[string]archive.Payload, len(urls))

	r.mu.Lock()
	for _, u := range urls {
		token := strings.TrimPrefix(u, r.prefix)
		if p, ok := r.handles[token]; ok {
			gone[token] = p
			delete(r.handles, token)
		}
	}
	r.mu.Unlock()

	release(gone)
	return len(gone)
}

func release(handles map[string]archive.Payload) {
	for token, p := range handles {
		if rel, ok := p.(Releaser); ok {
			if err := rel.Release(); err != nil {
				slog.Warn("payload release failed", "token", token, "error", err)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
