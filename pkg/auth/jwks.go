package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/Astinix/Butter-Launcher/pkg/auth/store"
	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

// JwksCache fetches and caches one issuer's signing-key set. The two
// issuer instances are fully independent; they never share cache files or
// state.
type JwksCache struct {
	client *Client
	name   string
	base   string
	cache  *store.JSON[types.Jwks]
}

func newJwksCache(client *Client, name, base string, cache *store.JSON[types.Jwks]) *JwksCache {
	return &JwksCache{client: client, name: name, base: base, cache: cache}
}

// Ensure returns the issuer's key set. Without forceRefresh a cached set
// is served as-is. A refresh that fails for any reason falls back to the
// cached set, even a stale one; the error is returned only when there is
// no cache to fall back to.
func (j *JwksCache) Ensure(ctx context.Context, forceRefresh bool) (*types.Jwks, error) {
	if !forceRefresh {
		if cached, ok := j.cached(); ok {
			return cached, nil
		}
	}
	fresh, err := j.refresh(ctx)
	if err != nil {
		if cached, ok := j.cached(); ok {
			j.client.log.Warn().Err(err).Str("issuer", j.name).Msg("JWKS refresh failed, serving cached key set")
			return cached, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (j *JwksCache) cached() (*types.Jwks, bool) {
	cached, ok := j.cache.Read()
	if !ok || len(cached.Keys) == 0 {
		return nil, false
	}
	return &cached, true
}

// refresh fetches the key set from the issuer. A document that parses but
// yields zero keys is a failure, not a valid empty cache: an empty key
// set would silently break signature verification downstream, so it is
// never persisted.
func (j *JwksCache) refresh(ctx context.Context) (*types.Jwks, error) {
	url := j.base + "/.well-known/jwks.json"
	h := http.Header{}
	h.Set("Accept", "application/json")

	res, err := j.client.do(ctx, http.MethodGet, url, nil, h, j.client.cfg.RequestTimeout, j.name+" JWKS fetch")
	if err != nil {
		return nil, err
	}
	if res.Status/100 != 2 {
		return nil, &ProviderError{Op: j.name + " JWKS fetch", Status: res.Status, Body: snippet(string(res.Body), 200)}
	}

	// The document must be a key set jwx can parse, with at least one key.
	set, err := jwk.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s JWKS invalid: %w", j.name, err)
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("%s JWKS invalid or empty", j.name)
	}

	var parsed types.Jwks
	if err := json.Unmarshal(res.Body, &parsed); err != nil || len(parsed.Keys) == 0 {
		return nil, fmt.Errorf("%s JWKS invalid or empty", j.name)
	}

	j.cache.Write(parsed)
	return &parsed, nil
}
