package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/surveykit/surveykit/models/enums"
)

// percentEncode applies the RFC 3986 encoding OAuth requires for signature
// material. Unlike url.QueryEscape, spaces become %20 and tildes stay bare
func percentEncode(s string) string {
	var builder strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			builder.WriteByte(c)
		} else {
			builder.WriteByte('%')
			builder.WriteByte(upperhex[c>>4])
			builder.WriteByte(upperhex[c&0x0f])
		}
	}

	return builder.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// signatureBase builds the RFC 5849 signature base string for the given
// request. params must contain both the request parameters and the oauth
// protocol parameters (excluding oauth_signature itself)
func signatureBase(method, rawurl string, params url.Values) (string, error) {
	baseURL, err := normalizeURL(rawurl)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(method) + "&" +
		percentEncode(baseURL) + "&" +
		percentEncode(normalizeParams(params)), nil
}

// normalizeURL lowercases the scheme and host, drops default ports and strips
// any query string, per RFC 5849 section 3.4.1.2
func normalizeURL(rawurl string) (string, error) {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return "", errors.Wrap(err, "parsing request url")
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Host)
	if (scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path, nil
}

// normalizeParams percent-encodes every key/value pair, sorts them and joins
// them into the parameter string that gets signed
func normalizeParams(params url.Values) string {
	pairs := make([]string, 0)
	for key, values := range params {
		for _, value := range values {
			pairs = append(pairs, percentEncode(key)+"="+percentEncode(value))
		}
	}
	sort.Strings(pairs)

	return strings.Join(pairs, "&")
}

// computeSignature signs the base string with the consumer and token secrets
// using the given method
func computeSignature(method enums.SignatureMethod, base, consumerSecret, tokenSecret string) (string, error) {
	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)

	switch method {
	case enums.SignatureMethodPlaintext:
		return key, nil
	case enums.SignatureMethodHMACSHA1:
		mac := hmac.New(sha1.New, []byte(key))
		mac.Write([]byte(base))
		return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
	default:
		return "", errors.Errorf("unknown signature method %v", int(method))
	}
}
