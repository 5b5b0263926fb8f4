package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"
)

// Crypto provides access to cryptographic utility functions
var Crypto = cryptoUtil{}

type cryptoUtil struct{}

// GenerateRandomToken generates a random token using a byte array of the provided length
func (u *cryptoUtil) GenerateRandomToken(length int) (string, error) {
	// Get a random byte array
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}

	// Encode it as URL encoded base 64 string
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateNonce generates a random nonce suitable for the oauth_nonce
// parameter of a signed request
func (u *cryptoUtil) GenerateNonce() (string, error) {
	return u.GenerateRandomToken(16)
}

// Timestamp returns the current time as the decimal epoch-seconds string the
// oauth_timestamp parameter expects
func (u *cryptoUtil) Timestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}
