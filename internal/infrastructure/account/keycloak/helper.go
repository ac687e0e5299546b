package keycloak

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var errKeycloakTransient = crerr.New("keycloak transient failure")

func isCircuitFailure(err error) bool {
	return errors.Is(err, errKeycloakTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func basicAuth(clientID, clientSecret string) string {
	raw := url.QueryEscape(clientID) + ":" + url.QueryEscape(clientSecret)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// introspectionURL accepts an absolute path override; otherwise it derives the
// realm endpoint from baseURL.
func introspectionURL(baseURL, realm, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/realms/" + url.PathEscape(strings.TrimSpace(realm)) + "/protocol/openid-connect/token/introspect"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
