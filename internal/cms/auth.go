package cms

import (
	"crypto/subtle"
	"errors"
	"github.com/gin-gonic/gin"
	domainerr "kadmeia/internal/domain/errors"
	"net/http"
	"strings"
)

const (
	RoleAdmin  = "admin"
	ctxRoleKey = "cms.role"
)

// RequireAdmin lets a request through only if its bearer token maps to
// the admin role: 401 without a known token, 403 for any other role.
func RequireAdmin(tokens map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := Authorize(tokens, c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, domainerr.ErrForbidden):
			abortJSON(c, http.StatusForbidden, "forbidden")
			return
		case err != nil:
			abortJSON(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(ctxRoleKey, role)
		c.Next()
	}
}

// Authorize checks an Authorization header against tokens and returns
// the role, ErrUnauthorized or ErrForbidden.
func Authorize(tokens map[string]string, header string) (string, error) {
	tok, ok := bearerToken(header)
	if !ok {
		return "", domainerr.ErrUnauthorized
	}
	role, ok := lookupRole(tokens, tok)
	if !ok {
		return "", domainerr.ErrUnauthorized
	}
	if role != RoleAdmin {
		return role, domainerr.ErrForbidden
	}
	return role, nil
}

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// lookupRole compares against every token in constant time.
func lookupRole(tokens map[string]string, tok string) (string, bool) {
	var (
		role  string
		found bool
	)
	for known, r := range tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(tok)) == 1 {
			role, found = r, true
		}
	}
	return role, found
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
