// Package auth implements HTTP Basic authentication against a configured
// user list with bcrypt-hashed credentials.
package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skc/procurement/internal/infrastructure/config"
	"github.com/skc/procurement/internal/interfaces/http/dto"
)

// Password cost for bcrypt
const bcryptCost = 12

// Role names
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

const userContextKey = "auth_user"

// User is an authenticated principal.
type User struct {
	Username string
	Role     string
}

type credential struct {
	passwordHash []byte
	role         string
}

// Authenticator verifies Basic Auth credentials. The user set is fixed at
// startup; lookups are read-only and safe for concurrent use.
type Authenticator struct {
	users  map[string]credential
	logger *zap.Logger
}

// NewAuthenticator builds an authenticator from the configured users. Plain
// passwords are hashed at startup; precomputed bcrypt hashes are used as-is.
// With no users configured, development defaults are installed.
func NewAuthenticator(users []config.AuthUser, logger *zap.Logger) (*Authenticator, error) {
	if len(users) == 0 {
		users = []config.AuthUser{
			{Username: "admin", Password: "admin", Role: RoleAdmin},
			{Username: "user", Password: "user", Role: RoleUser},
		}
		logger.Warn("no auth users configured, using development defaults",
			zap.Strings("usernames", []string{"admin", "user"}))
	}

	a := &Authenticator{
		users:  make(map[string]credential, len(users)),
		logger: logger,
	}
	for _, u := range users {
		if u.Username == "" {
			return nil, fmt.Errorf("auth user with empty username")
		}
		if _, exists := a.users[u.Username]; exists {
			return nil, fmt.Errorf("duplicate auth user %q", u.Username)
		}

		role := u.Role
		if role == "" {
			role = RoleUser
		}

		var hash []byte
		switch {
		case u.PasswordHash != "":
			hash = []byte(u.PasswordHash)
		case u.Password != "":
			h, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password for %q: %w", u.Username, err)
			}
			hash = h
		default:
			return nil, fmt.Errorf("auth user %q has no password or password_hash", u.Username)
		}
		a.users[u.Username] = credential{passwordHash: hash, role: role}
	}
	return a, nil
}

// Authenticate checks a username/password pair and returns the principal.
func (a *Authenticator) Authenticate(username, password string) (User, bool) {
	cred, ok := a.users[username]
	if !ok {
		return User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(cred.passwordHash, []byte(password)); err != nil {
		return User{}, false
	}
	return User{Username: username, Role: cred.role}, true
}

// Middleware returns a gin handler enforcing Basic Auth on the group it is
// attached to.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			a.reject(c)
			return
		}
		user, ok := a.Authenticate(username, password)
		if !ok {
			a.logger.Warn("authentication failed",
				zap.String("username", username),
				zap.String("client_ip", c.ClientIP()),
			)
			a.reject(c)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

func (a *Authenticator) reject(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="procurement"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, "authentication required"))
}

// CurrentUser returns the authenticated principal bound to the request.
func CurrentUser(c *gin.Context) (User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return User{}, false
	}
	user, ok := v.(User)
	return user, ok
}
