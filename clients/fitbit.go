package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/oauth"
	"github.com/surveykit/surveykit/transport"
)

const defaultFitBitPrefix = "/1"

// FitBit is a handle to the FitBit server. Requests are signed with the
// consumer credentials from the config plus an access token obtained through
// the OAuth handshake. A handle is not safe for concurrent use
type FitBit struct {
	config models.Config
	signer *oauth.Signer
}

// NewFitBit returns a handle to the FitBit server described by the config
func NewFitBit(config *models.Config) *FitBit {
	cfg := *config
	if cfg.AppPrefix == "" {
		cfg.AppPrefix = defaultFitBitPrefix
	}

	return &FitBit{
		config: cfg,
		signer: oauth.NewSigner(&cfg, transport.New(&cfg)),
	}
}

// BeginHandshake obtains a request token and the URL the account owner must
// visit to authorize access
func (c *FitBit) BeginHandshake(ctx context.Context, callbackURL string) (*models.RequestToken, string, error) {
	return c.signer.BeginHandshake(ctx, callbackURL, nil)
}

// CompleteHandshake exchanges the request token plus the callback's verifier
// for a permanent access token
func (c *FitBit) CompleteHandshake(ctx context.Context, requestToken *models.RequestToken, verifier string) (*models.AccessToken, error) {
	return c.signer.CompleteHandshake(ctx, requestToken, verifier, nil)
}

// ActivitiesSteps returns the step counts for the given user over the given
// date range. Empty arguments fall back to the API defaults: the token's own
// user, starting today, covering 30 days
func (c *FitBit) ActivitiesSteps(ctx context.Context, token *models.AccessToken, user, start, end string) (*transport.Payload, error) {
	if user == "" {
		user = "-"
	}
	if start == "" {
		start = "today"
	}
	if end == "" {
		end = "30d"
	}

	requestURL := fmt.Sprintf("%v%v/user/%v/activities/steps/date/%v/%v.json",
		c.config.Server, c.config.AppPrefix, user, start, end)

	status, body, err := c.signer.SignedRequest(ctx, token, requestURL, http.MethodGet, url.Values{})
	if err != nil {
		return nil, err
	}

	return transport.Interpret(status, body)
}
