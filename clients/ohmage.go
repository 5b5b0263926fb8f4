package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/models/enums"
	"github.com/surveykit/surveykit/transport"
)

// OhmageAPIVersion is the version of the Ohmage API this client targets.
// Connect to a server >= this version for best results
const OhmageAPIVersion = "2.10"

const (
	defaultOhmagePrefix = "/app"
	defaultClientName   = "surveykit-go"
)

// Ohmage is a handle to an Ohmage server. It provides one method per request
// that can be made against the server. No connection occurs until a request
// is made, and there is nothing to close afterwards.
//
// Operations that need credentials use an explicitly passed session first and
// fall back on the one cached by Login. A handle is not safe for concurrent
// use
type Ohmage struct {
	config    models.Config
	transport *transport.Transport
	sessions  *sessionCache
	logger    *zap.Logger
}

// NewOhmage returns a handle to the Ohmage server described by the config
func NewOhmage(config *models.Config) *Ohmage {
	cfg := *config
	if cfg.AppPrefix == "" {
		cfg.AppPrefix = defaultOhmagePrefix
	}
	if cfg.Client == "" {
		cfg.Client = defaultClientName
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ohmage{
		config:    cfg,
		transport: transport.New(&cfg),
		sessions:  newSessionCache(cfg.TokenLifetime),
		logger:    logger,
	}
}

// ========================================================
// === User Authentication
// ========================================================

// UserAuth exchanges a username and password for a hashed password, which
// remains valid indefinitely
func (c *Ohmage) UserAuth(ctx context.Context, username, password string) (*transport.Payload, error) {
	return c.perform(ctx, "/user/auth", http.MethodPost, url.Values{
		"user":     {username},
		"password": {password},
		"client":   {c.config.Client},
	}, enums.RequestModeStandard)
}

// UserAuthToken exchanges a username and password for a bearer token, which
// times out after a while
func (c *Ohmage) UserAuthToken(ctx context.Context, username, password string) (*transport.Payload, error) {
	return c.perform(ctx, "/user/auth_token", http.MethodPost, url.Values{
		"user":     {username},
		"password": {password},
		"client":   {c.config.Client},
	}, enums.RequestModeStandard)
}

// Login performs both authentication calls and returns the resulting session.
// The session is also cached in the handle, so later operations can omit it.
// If either credential has become invalid by the time it is used, the server
// reports an APIError containing code 0200
func (c *Ohmage) Login(ctx context.Context, username, password string) (*models.Session, error) {
	payload, err := c.UserAuth(ctx, username, password)
	if err != nil {
		return nil, err
	}
	hashedPassword, ok := payload.Data["hashed_password"].(string)
	if !ok {
		return nil, errors.New("auth response is missing hashed_password")
	}

	payload, err = c.UserAuthToken(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, ok := payload.Data["token"].(string)
	if !ok {
		return nil, errors.New("auth_token response is missing token")
	}

	session := &models.Session{
		Username:       username,
		HashedPassword: hashedPassword,
		Token:          token,
	}
	c.sessions.put(*session)
	c.logger.Debug("login complete", zap.String("username", username))

	return session, nil
}

// Logout drops the cached session. Explicitly passed sessions are unaffected
func (c *Ohmage) Logout() {
	c.sessions.clear()
}

// IsAuthenticated returns true if credentials are cached in this handle,
// whether or not the server still considers them valid. With forToken it
// probes for a live bearer token instead of the hashed password
func (c *Ohmage) IsAuthenticated(forToken bool) bool {
	if forToken {
		_, found := c.sessions.token()
		return found
	}

	_, _, found := c.sessions.credentials()
	return found
}

// ========================================================
// === Server Configuration
// ========================================================

// ConfigRead returns information about a particular Ohmage install
func (c *Ohmage) ConfigRead(ctx context.Context) (*transport.Payload, error) {
	return c.perform(ctx, "/config/read", http.MethodGet, url.Values{}, enums.RequestModeStandard)
}

// ========================================================
// === Campaign Manipulation
// ========================================================

// CampaignRead returns the campaigns visible to the logged-in user in the
// given output format, filtered by the given options
func (c *Ohmage) CampaignRead(ctx context.Context, session *models.Session, format enums.OutputFormat, opts *CampaignReadOptions) (*transport.Payload, error) {
	params := url.Values{
		"output_format": {format.String()},
		"client":        {c.config.Client},
	}
	if err := encodeOptions(params, opts); err != nil {
		return nil, err
	}

	c.addLoginToParams(params, session, true)

	return c.perform(ctx, "/campaign/read", http.MethodPost, params, enums.RequestModeStandard)
}

// ========================================================
// === Survey Manipulation
// ========================================================

// SurveyUpload uploads completed surveys for the given campaign. The upload
// travels as multipart form data, surveys serialized as a JSON array
func (c *Ohmage) SurveyUpload(ctx context.Context, session *models.Session, campaignURN, campaignCreationTimestamp string, surveys []models.Survey) (*transport.Payload, error) {
	encoded, err := json.Marshal(surveys)
	if err != nil {
		return nil, errors.Wrap(err, "serializing surveys")
	}

	params := url.Values{
		"client":                      {c.config.Client},
		"campaign_urn":                {campaignURN},
		"campaign_creation_timestamp": {campaignCreationTimestamp},
		"surveys":                     {string(encoded)},
	}

	// survey upload authenticates with user/password rather than a token
	c.addLoginToParams(params, session, false)

	return c.perform(ctx, "/survey/upload", http.MethodPost, params, enums.RequestModeMultipart)
}

// SurveyResponseRead reads survey responses for the given campaign. The
// options control the output format and which responses are included
func (c *Ohmage) SurveyResponseRead(ctx context.Context, session *models.Session, campaignURN string, opts *SurveyResponseReadOptions) (*transport.Payload, error) {
	params := url.Values{
		"campaign_urn": {campaignURN},
		"client":       {c.config.Client},
	}
	if err := encodeOptions(params, opts); err != nil {
		return nil, err
	}

	// the server requires these three even when the caller doesn't care
	setDefault(params, "output_format", "json-rows")
	setDefault(params, "column_list", "urn:ohmage:special:all")
	setDefault(params, "user_list", "urn:ohmage:special:all")

	c.addLoginToParams(params, session, true)

	return c.perform(ctx, "/survey_response/read", http.MethodPost, params, enums.RequestModeStandard)
}

// ========================================================
// === Mobility
// ========================================================

// MobilityRead returns the mobility data points recorded on the given
// ISO8601 date
func (c *Ohmage) MobilityRead(ctx context.Context, session *models.Session, date string, opts *MobilityReadOptions) (*transport.Payload, error) {
	params := url.Values{
		"date":   {date},
		"client": {c.config.Client},
	}
	if err := encodeOptions(params, opts); err != nil {
		return nil, err
	}

	c.addLoginToParams(params, session, true)

	return c.perform(ctx, "/mobility/read", http.MethodPost, params, enums.RequestModeStandard)
}

// MobilityDatesRead returns the dates on which mobility data points exist,
// optionally bounded by the options' date range
func (c *Ohmage) MobilityDatesRead(ctx context.Context, session *models.Session, opts *MobilityDatesReadOptions) (*transport.Payload, error) {
	params := url.Values{
		"client": {c.config.Client},
	}
	if err := encodeOptions(params, opts); err != nil {
		return nil, err
	}

	c.addLoginToParams(params, session, true)

	return c.perform(ctx, "/mobility/dates/read", http.MethodPost, params, enums.RequestModeStandard)
}

// ========================================================
// === support methods
// ========================================================

// perform sends the request and interprets the response
func (c *Ohmage) perform(ctx context.Context, uri, method string, params url.Values, mode enums.RequestMode) (*transport.Payload, error) {
	status, body, err := c.transport.Send(ctx, c.config.Server+c.config.AppPrefix+uri, method, params, mode)
	if err != nil {
		return nil, err
	}

	return transport.Interpret(status, body)
}

// addLoginToParams appends credentials to the request if they're not already
// present. An explicitly passed session wins over the cached one; token-auth
// operations prefer auth_token but fall back on user and hashed password when
// no live token is available, since the hashed password stays valid after the
// token has timed out
func (c *Ohmage) addLoginToParams(params url.Values, session *models.Session, useToken bool) {
	if useToken {
		if params.Get("auth_token") != "" {
			return
		}
		if session != nil && session.Token != "" {
			params.Set("auth_token", session.Token)
			return
		}
		if token, found := c.sessions.token(); found {
			params.Set("auth_token", token)
			return
		}
		// no live token anywhere - fall through to the password credentials
	}

	if params.Get("user") != "" || params.Get("password") != "" {
		return
	}
	if session != nil && session.Username != "" && session.HashedPassword != "" {
		params.Set("user", session.Username)
		params.Set("password", session.HashedPassword)
		return
	}
	if username, hashedPassword, found := c.sessions.credentials(); found {
		params.Set("user", username)
		params.Set("password", hashedPassword)
	}
}

func setDefault(params url.Values, key, value string) {
	if params.Get(key) == "" {
		params.Set(key, value)
	}
}
