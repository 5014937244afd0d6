// Package auth attaches games API access tokens to outgoing requests and
// re-authenticates when the API rejects them.
package auth

import "strings"

// SchemeBearer is the Authorization scheme used by the games API.
const SchemeBearer = "Bearer"

// HeaderAuthorization is the header carrying the access token.
const HeaderAuthorization = "Authorization"

// HeaderClientID identifies the application to the games API.
const HeaderClientID = "Client-ID"

// BuildHeader formats an Authorization header value.
func BuildHeader(scheme, token string) string {
	return scheme + " " + token
}

// ParseHeader splits an Authorization header value into scheme and token.
// The value must be exactly two non-empty parts separated by one space.
func ParseHeader(value string) (scheme, token string, ok bool) {
	parts := strings.Split(value, " ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
