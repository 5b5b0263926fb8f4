package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/models/enums"
	"github.com/surveykit/surveykit/oauth"
	"github.com/surveykit/surveykit/transport"
)

const defaultBodyMediaPrefix = "/v2/json"

// BodyMedia is a handle to the BodyMedia server. BodyMedia is an OAuth
// provider with a quirk: the consumer's api_key must ride along on every
// request, including both handshake legs and the authorization redirect.
// A handle is not safe for concurrent use
type BodyMedia struct {
	config models.Config
	signer *oauth.Signer
}

// NewBodyMedia returns a handle to the BodyMedia server described by the
// config. BodyMedia negotiated plaintext signing over TLS, so that is the
// signature method used here
func NewBodyMedia(config *models.Config) *BodyMedia {
	cfg := *config
	if cfg.AppPrefix == "" {
		cfg.AppPrefix = defaultBodyMediaPrefix
	}

	signer := oauth.NewSigner(&cfg, transport.New(&cfg))
	signer.SetSignatureMethod(enums.SignatureMethodPlaintext)

	return &BodyMedia{
		config: cfg,
		signer: signer,
	}
}

// BeginHandshake obtains a request token and the URL the account owner must
// visit to authorize access, with the api_key appended to both
func (c *BodyMedia) BeginHandshake(ctx context.Context, callbackURL string) (*models.RequestToken, string, error) {
	return c.signer.BeginHandshake(ctx, callbackURL, c.apiKeyParams())
}

// CompleteHandshake exchanges the request token plus the callback's verifier
// for a permanent access token, with the api_key appended to the exchange
func (c *BodyMedia) CompleteHandshake(ctx context.Context, requestToken *models.RequestToken, verifier string) (*models.AccessToken, error) {
	return c.signer.CompleteHandshake(ctx, requestToken, verifier, c.apiKeyParams())
}

// StepDay returns per-day step counts for the given date range. Dates are
// formatted YYYYMMDD
func (c *BodyMedia) StepDay(ctx context.Context, token *models.AccessToken, start, end string) (*transport.Payload, error) {
	requestURL := fmt.Sprintf("%v%v/step/day/%v/%v",
		c.config.Server, c.config.AppPrefix, start, end)

	// the server only answers in JSON when asked to
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	status, body, err := c.signer.SignedRequestWithHeaders(ctx, token, requestURL, http.MethodGet, c.apiKeyParams(), headers)
	if err != nil {
		return nil, err
	}

	return transport.Interpret(status, body)
}

func (c *BodyMedia) apiKeyParams() url.Values {
	return url.Values{"api_key": {c.config.APIKey}}
}
