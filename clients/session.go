package clients

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/surveykit/surveykit/models"
)

const (
	credentialsKey = "credentials"
	tokenKey       = "token"

	// Ohmage bearer tokens time out server side; stop sending a cached one
	// after this long unless the config says otherwise
	defaultTokenLifetime = 15 * time.Minute
)

// sessionCache holds the credentials of the most recent login. The hashed
// password remains valid indefinitely, so it never expires; the bearer token
// is dropped once its lifetime passes
type sessionCache struct {
	store *cache.Cache
}

func newSessionCache(tokenLifetime time.Duration) *sessionCache {
	if tokenLifetime <= 0 {
		tokenLifetime = defaultTokenLifetime
	}

	return &sessionCache{
		store: cache.New(tokenLifetime, 2*tokenLifetime),
	}
}

// put replaces any cached credentials with the session's
func (c *sessionCache) put(session models.Session) {
	if session.Username != "" && session.HashedPassword != "" {
		c.store.Set(credentialsKey, session, cache.NoExpiration)
	}
	if session.Token != "" {
		c.store.Set(tokenKey, session.Token, cache.DefaultExpiration)
	}
}

// token returns the cached bearer token, if one is cached and still live
func (c *sessionCache) token() (string, bool) {
	cached, found := c.store.Get(tokenKey)
	if !found {
		return "", false
	}

	return cached.(string), true
}

// credentials returns the cached username and hashed password, if cached
func (c *sessionCache) credentials() (string, string, bool) {
	cached, found := c.store.Get(credentialsKey)
	if !found {
		return "", "", false
	}

	session := cached.(models.Session)
	return session.Username, session.HashedPassword, true
}

// clear drops everything cached
func (c *sessionCache) clear() {
	c.store.Flush()
}
