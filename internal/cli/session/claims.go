package session

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role that unlocks admin commands in the client
const RoleAdmin = "admin"

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// ParseRole reads the role claim from a token's payload without verifying
// the signature. The result only decides what the client shows; the backend
// enforces authorization on every request. Anything but three segments, or
// any other malformed input, yields "".
func ParseRole(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return ""
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	role, _ := claims["role"].(string)
	return role
}
