package models

import (
	"time"

	"go.uber.org/zap"
)

// Config represents the configuration of a client facade. Server is the only
// mandatory field; everything else has a sensible zero value.
type Config struct {
	// Server is the base URL of the remote service, e.g. "https://dev.mobilizingcs.org".
	Server string `json:"server"`

	// AppPrefix is prepended to every API path. Each facade fills in its
	// service's default ("/app" for Ohmage, "/1" for FitBit, "/v2/json" for
	// BodyMedia) when left empty.
	AppPrefix string `json:"app_prefix"`

	// Client is the client name reported to services that require one.
	Client string `json:"client"`

	// APIKey and APISecret are the OAuth consumer credentials issued by the
	// provider. Only used by the OAuth-based facades.
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`

	// Paths of the three OAuth endpoints, relative to Server.
	RequestTokenPath string `json:"request_token_path"`
	AccessTokenPath  string `json:"access_token_path"`
	AuthenticatePath string `json:"authenticate_path"`

	// ConnectTimeout bounds establishing the TCP connection, ReadTimeout the
	// whole request. Zero keeps the net/http defaults.
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ReadTimeout    time.Duration `json:"read_timeout"`

	// TokenLifetime controls how long a cached bearer token is considered
	// usable before the facade stops sending it implicitly.
	TokenLifetime time.Duration `json:"token_lifetime"`

	// Logger receives debug output for every request. Defaults to a no-op.
	Logger *zap.Logger `json:"-"`
}
