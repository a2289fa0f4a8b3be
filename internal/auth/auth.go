package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"strings"
)

// Credentials is a username/password pair expected on inbound requests.
type Credentials struct {
	Username string
	Password string
}

// Validator checks the Authorization header of inbound requests against the
// configured credentials. It fails closed: any parse failure yields false,
// never an error or a panic.
type Validator struct {
	creds  Credentials
	logger *slog.Logger
}

func NewValidator(creds Credentials, logger *slog.Logger) *Validator {
	return &Validator{creds: creds, logger: logger}
}

// Validate reports whether header carries valid basic-auth credentials.
// Malformed input is logged at debug level; a plain mismatch is not.
func (v *Validator) Validate(header string) bool {
	payload, ok := v.decode(header)
	if !ok {
		return false
	}

	idx := strings.IndexByte(payload, ':')
	if idx < 0 || strings.IndexByte(payload[idx+1:], ':') >= 0 {
		v.malformed("credential payload must contain exactly one colon")
		return false
	}

	username := payload[:idx]
	password := payload[idx+1:]

	// Compare both halves unconditionally so a username mismatch doesn't
	// short-circuit the password comparison.
	userOK := constantTimeEqual(username, v.creds.Username)
	passOK := constantTimeEqual(password, v.creds.Password)
	return userOK && passOK
}

func (v *Validator) decode(header string) (string, bool) {
	if header == "" {
		v.malformed("missing Authorization header")
		return "", false
	}

	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		v.malformed("Authorization header has no credentials part")
		return "", false
	}
	if !strings.EqualFold(scheme, "Basic") {
		v.malformed("unsupported Authorization scheme")
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest))
	if err != nil {
		v.malformed("credentials are not valid base64")
		return "", false
	}
	return string(decoded), true
}

func (v *Validator) malformed(reason string) {
	if v.logger != nil {
		v.logger.Debug("rejected malformed Authorization header", "reason", reason)
	}
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
