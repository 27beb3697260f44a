package auth

import "github.com/gin-gonic/gin"

const identityKey = "identity"

// Identity is the caller as seen by the game card. The zero value means
// "not signed in".
type Identity struct {
	Email string
}

// Anonymous is the identity of a caller without a valid token.
var Anonymous = Identity{}

// SignedIn reports whether the identity carries an email.
func (i Identity) SignedIn() bool {
	return i.Email != ""
}

// SetIdentity stores the identity on the gin context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity set by one of the auth middlewares, or
// Anonymous.
func IdentityFrom(c *gin.Context) Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return Anonymous
	}
	id, ok := v.(Identity)
	if !ok {
		return Anonymous
	}
	return id
}
