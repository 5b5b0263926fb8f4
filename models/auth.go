package models

// RequestToken is the temporary token pair obtained in the first leg of the
// OAuth handshake. It is only valid until it is exchanged for an AccessToken,
// together with the verifier the provider hands to the callback URL.
type RequestToken struct {
	Key    string
	Secret string
}

// AccessToken is the permanent token pair obtained by completing the OAuth
// handshake. It signs all subsequent requests made on the owner's behalf.
type AccessToken struct {
	Key    string
	Secret string
}

// Session holds the credentials produced by a login against an Ohmage server.
// It is an immutable value - operations take it explicitly, or fall back on
// the copy the facade cached when the session was created.
//
// The hashed password remains valid indefinitely, whereas the token times out
// server side after a while.
type Session struct {
	Username       string
	HashedPassword string
	Token          string
}
