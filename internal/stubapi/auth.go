package stubapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/Khatrip009/MinalGems-website/internal/config"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// HashPassword returns a PHC-like encoded string for storage.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", argonMemory, argonTime, argonThreads, b64Salt, b64Hash), nil
}

// VerifyPassword compares a password with a stored hash.
func VerifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var m uint32
	var t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Claims carries the authenticated user id in the subject.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SignAccess issues a short-lived HS256 access token.
func SignAccess(cfg *config.Config, sub, email string) (string, error) {
	if cfg.JWT.Algo != "HS256" {
		return "", errors.New("unsupported JWT_ALGO")
	}
	now := time.Now().UTC()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{cfg.JWT.Audience},
			Subject:   sub,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWT.AccessMin) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.HSSecret))
}

// ParseAndValidate verifies a token string and returns its claims.
func ParseAndValidate(cfg *config.Config, tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.HSSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

const (
	localsUserID  = "user_id"
	localsVisitor = "visitor_id"
)

// IdentityMiddleware resolves the actor for every request: the bearer
// token's subject when present and valid, otherwise the x-visitor-id
// header. An invalid or expired token is a hard 401 so the client can
// clear its stored credentials.
func IdentityMiddleware(cfg *config.Config, store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsVisitor, c.Get("x-visitor-id", "anonymous"))

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			return Unauthorized()
		}
		claims, err := ParseAndValidate(cfg, tokenStr)
		if err != nil {
			return Unauthorized()
		}
		if _, ok := store.UserByID(claims.Subject); !ok {
			return Unauthorized()
		}
		c.Locals(localsUserID, claims.Subject)
		return c.Next()
	}
}

// RequireUser guards endpoints that only make sense for an account.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID(c) == "" {
			return Unauthorized()
		}
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	if v, ok := c.Locals(localsUserID).(string); ok {
		return v
	}
	return ""
}

func visitorID(c *fiber.Ctx) string {
	if v, ok := c.Locals(localsVisitor).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}

// ownerKey picks the cart/wishlist owner for the request: the account
// when authenticated, else the visitor header.
func ownerKey(c *fiber.Ctx) string {
	if uid := userID(c); uid != "" {
		return "user:" + uid
	}
	return visitorID(c)
}

// AuthHandlers serves /auth/login and /auth/register.
type AuthHandlers struct {
	cfg   *config.Config
	store *Store
}

func NewAuthHandlers(cfg *config.Config, store *Store) *AuthHandlers {
	return &AuthHandlers{cfg: cfg, store: store}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Login godoc
// @Summary  Exchange credentials for an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body credentialsBody true "credentials"
// @Success  200 {object} apix.LoginResponse
// @Router   /auth/login [post]
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	u, ok := h.store.UserByEmail(body.Email)
	if !ok || !VerifyPassword(body.Password, u.PasswordHash) {
		return NewContractError(fiber.StatusUnauthorized, "invalid_credentials")
	}
	token, err := SignAccess(h.cfg, u.ID, u.Email)
	if err != nil {
		return Internal("token_sign_failed")
	}
	profile := u.UserProfile
	return OK(c, fiber.Map{"token": token, "user": &profile})
}

// Register godoc
// @Summary  Create an account and log it in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body credentialsBody true "credentials"
// @Success  200 {object} apix.LoginResponse
// @Router   /auth/register [post]
func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return BadRequest("invalid_body")
	}
	if body.Email == "" || len(body.Password) < 8 {
		return BadRequest("invalid_credentials")
	}
	hash, err := HashPassword(body.Password)
	if err != nil {
		return Internal("hash_failed")
	}
	u, created := h.store.CreateUser(body.Email, body.FullName, hash)
	if !created {
		return NewContractError(fiber.StatusConflict, "email_taken")
	}
	token, err := SignAccess(h.cfg, u.ID, u.Email)
	if err != nil {
		return Internal("token_sign_failed")
	}
	profile := u.UserProfile
	return OK(c, fiber.Map{"token": token, "user": &profile})
}
