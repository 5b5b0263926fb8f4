package utils

import (
	"strings"
)

// Params provides access to parameter formatting utility functions
var Params = paramsUtil{}

type paramsUtil struct{}

// JoinURNs joins together the provided URNs in to the comma-separated list
// form the Ohmage API expects
func (u *paramsUtil) JoinURNs(urns []string) string {
	return strings.Join(urns, ",")
}
