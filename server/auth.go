package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// SessionCookie is the cookie the identity provider stores its session
// token in for browser requests
const SessionCookie = "__session"

const callerKey = "user_id"

// bearerToken returns the token from the Authorization header, falling back
// to the session cookie
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies(SessionCookie)
}

// parseSubject validates an HS256 token and returns its subject
func parseSubject(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

// OptionalAuth identifies the caller when a valid token is present. Requests
// without a token, or with an invalid one, continue anonymously.
func OptionalAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			return c.Next()
		}

		subject, err := parseSubject(tokenStr, secret)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  c.Path(),
				"error": err,
			}).Debug("Ignoring invalid session token")
			return c.Next()
		}

		c.Locals(callerKey, subject)
		return c.Next()
	}
}

// CallerId returns the identified caller or an empty string
func CallerId(c *fiber.Ctx) string {
	id, _ := c.Locals(callerKey).(string)
	return id
}
