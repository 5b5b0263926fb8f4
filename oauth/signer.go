// Package oauth implements the three-legged OAuth 1.0a handshake and request
// signing used by the FitBit and BodyMedia facades.
//
// The main trickiness of using an OAuth provider is that the user must first
// visit the provider's site to authorize requests for their account:
//
//  1. BeginHandshake obtains a temporary request token and builds the URL the
//     user must visit to give their ok.
//  2. The provider sends the user back with a verifier. CompleteHandshake
//     exchanges the request token plus that verifier for a permanent access
//     token pair.
//  3. SignedRequest signs each subsequent request with the consumer
//     credentials and the access token from step 2.
package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/models/enums"
	"github.com/surveykit/surveykit/transport"
	"github.com/surveykit/surveykit/utils"
)

// HandshakeState tracks a signer's progress through the three-legged flow
type HandshakeState int

const (
	// StateUnauthenticated signers have not started the handshake
	StateUnauthenticated HandshakeState = iota
	// StateRequestTokenObtained signers hold a request token and are waiting
	// for the user to authorize it
	StateRequestTokenObtained
	// StateAuthenticated signers have exchanged their request token for an
	// access token
	StateAuthenticated
)

var handshakeStates = []string{
	"unauthenticated",
	"request_token_obtained",
	"authenticated",
}

func (s HandshakeState) String() string {
	return handshakeStates[s]
}

// ErrHandshakeOrder is returned if CompleteHandshake is called before a
// request token has been obtained
var ErrHandshakeOrder = errors.New("no request token obtained yet")

// AuthError is returned when a handshake step fails with a non-success status.
// The signer's state is left unchanged
type AuthError struct {
	Step   string
	Status int
	Body   []byte
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("oauth %v request failed w/HTTP code %v", e.Step, e.Status)
}

// Signer performs the OAuth handshake against a provider and signs requests
// with the resulting tokens. A signer is not safe for concurrent use
type Signer struct {
	config    *models.Config
	transport *transport.Transport
	method    enums.SignatureMethod
	state     HandshakeState
	logger    *zap.Logger
}

// NewSigner returns a signer for the provider described by the config,
// sending through the provided transport. Requests are signed with HMAC-SHA1
// unless SetSignatureMethod is used to pick another method
func NewSigner(config *models.Config, t *transport.Transport) *Signer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Signer{
		config:    config,
		transport: t,
		method:    enums.SignatureMethodHMACSHA1,
		state:     StateUnauthenticated,
		logger:    logger,
	}
}

// SetSignatureMethod overrides the signature method used for all requests.
// Plaintext is only acceptable when the transport is HTTPS
func (s *Signer) SetSignatureMethod(method enums.SignatureMethod) {
	s.method = method
}

// State returns the signer's current handshake state
func (s *Signer) State() HandshakeState {
	return s.state
}

// BeginHandshake obtains a temporary request token from the provider and
// returns it together with the URL the owner of the account must visit to
// authorize access. The caller must hold on to the request token and pass it
// back to CompleteHandshake once the provider's callback supplies a verifier.
// extra carries any provider-specific parameters that must ride along on both
// the token request and the authorization URL
func (s *Signer) BeginHandshake(ctx context.Context, callbackURL string, extra url.Values) (*models.RequestToken, string, error) {
	oauthParams, err := s.protocolParams("")
	if err != nil {
		return nil, "", err
	}
	if callbackURL != "" {
		oauthParams.Set("oauth_callback", callbackURL)
	}

	requestTokenURL := s.config.Server + s.config.RequestTokenPath
	status, body, err := s.send(ctx, requestTokenURL, http.MethodPost, extra, oauthParams, "", nil)
	if err != nil {
		return nil, "", err
	}
	if !isSuccess(status) {
		return nil, "", &AuthError{Step: "request token", Status: status, Body: body}
	}

	key, secret, err := parseTokenBody(body)
	if err != nil {
		return nil, "", err
	}
	token := &models.RequestToken{Key: key, Secret: secret}

	// build the redirect url the user must visit
	redirectParams := url.Values{}
	redirectParams.Set("oauth_token", token.Key)
	if callbackURL != "" {
		redirectParams.Set("oauth_callback", callbackURL)
	}
	for k, values := range extra {
		for _, v := range values {
			redirectParams.Add(k, v)
		}
	}
	authorizeURL := s.config.Server + s.config.AuthenticatePath + "?" + redirectParams.Encode()

	s.state = StateRequestTokenObtained
	s.logger.Debug("request token obtained", zap.String("authorizeURL", authorizeURL))

	return token, authorizeURL, nil
}

// CompleteHandshake exchanges the request token from BeginHandshake plus the
// verifier passed to the callback for a permanent access token pair
func (s *Signer) CompleteHandshake(ctx context.Context, requestToken *models.RequestToken, verifier string, extra url.Values) (*models.AccessToken, error) {
	if s.state == StateUnauthenticated {
		return nil, ErrHandshakeOrder
	}

	oauthParams, err := s.protocolParams(requestToken.Key)
	if err != nil {
		return nil, err
	}
	if verifier != "" {
		oauthParams.Set("oauth_verifier", verifier)
	}

	accessTokenURL := s.config.Server + s.config.AccessTokenPath
	status, body, err := s.send(ctx, accessTokenURL, http.MethodPost, extra, oauthParams, requestToken.Secret, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &AuthError{Step: "access token", Status: status, Body: body}
	}

	key, secret, err := parseTokenBody(body)
	if err != nil {
		return nil, err
	}

	s.state = StateAuthenticated

	return &models.AccessToken{Key: key, Secret: secret}, nil
}

// SignedRequest signs a request with the consumer credentials and the given
// access token, sends it, and returns the raw status and body
func (s *Signer) SignedRequest(ctx context.Context, token *models.AccessToken, rawurl, method string, params url.Values) (int, []byte, error) {
	return s.SignedRequestWithHeaders(ctx, token, rawurl, method, params, nil)
}

// SignedRequestWithHeaders behaves like SignedRequest, with extra headers
// applied to the request alongside the Authorization header
func (s *Signer) SignedRequestWithHeaders(ctx context.Context, token *models.AccessToken, rawurl, method string, params url.Values, headers http.Header) (int, []byte, error) {
	oauthParams, err := s.protocolParams(token.Key)
	if err != nil {
		return 0, nil, err
	}

	return s.send(ctx, rawurl, method, params, oauthParams, token.Secret, headers)
}

// send signs the request over both the request params and the oauth protocol
// params, then performs it with the signature riding in the Authorization
// header. The request params travel as usual (query string or form body)
func (s *Signer) send(ctx context.Context, rawurl, method string, params, oauthParams url.Values, tokenSecret string, extraHeaders http.Header) (int, []byte, error) {
	combined := url.Values{}
	for k, values := range params {
		for _, v := range values {
			combined.Add(k, v)
		}
	}
	for k, values := range oauthParams {
		for _, v := range values {
			combined.Add(k, v)
		}
	}

	base, err := signatureBase(method, rawurl, combined)
	if err != nil {
		return 0, nil, err
	}

	signature, err := computeSignature(s.method, base, s.config.APISecret, tokenSecret)
	if err != nil {
		return 0, nil, err
	}
	oauthParams.Set("oauth_signature", signature)

	headers := http.Header{}
	for key, values := range extraHeaders {
		for _, value := range values {
			headers.Add(key, value)
		}
	}
	headers.Set("Authorization", authorizationHeader(oauthParams))

	return s.transport.SendWithHeaders(ctx, rawurl, method, params, enums.RequestModeStandard, headers)
}

// protocolParams assembles the oauth_* parameters common to every signed
// request. tokenKey is empty for the first handshake leg
func (s *Signer) protocolParams(tokenKey string) (url.Values, error) {
	nonce, err := utils.Crypto.GenerateNonce()
	if err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}

	params := url.Values{}
	params.Set("oauth_consumer_key", s.config.APIKey)
	params.Set("oauth_nonce", nonce)
	params.Set("oauth_signature_method", s.method.String())
	params.Set("oauth_timestamp", utils.Crypto.Timestamp())
	params.Set("oauth_version", "1.0")
	if tokenKey != "" {
		params.Set("oauth_token", tokenKey)
	}

	return params, nil
}

// authorizationHeader renders the oauth params as an OAuth Authorization
// header value, keys sorted for determinism
func authorizationHeader(oauthParams url.Values) string {
	keys := make([]string, 0)
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0)
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+`="`+percentEncode(oauthParams.Get(k))+`"`)
	}

	return "OAuth " + strings.Join(pairs, ", ")
}

// parseTokenBody pulls the token pair out of a urlencoded token response
func parseTokenBody(body []byte) (string, string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return "", "", errors.Wrap(err, "parsing token response")
	}

	key := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if key == "" || secret == "" {
		return "", "", errors.New("token response is missing oauth_token or oauth_token_secret")
	}

	return key, secret, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
