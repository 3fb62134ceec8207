package auth

import (
	"circle/config"
	"circle/models"
	"crypto/sha256"
	"errors"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")

	now = time.Now
)

type Claims struct {
	UserID   uint64      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role,omitempty"`
	Type     string      `json:"type"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// signingKey derives a 256 bit HMAC key from the configured secret
func signingKey() []byte {
	sum := sha256.Sum256([]byte(config.JWT_SECRET_KEY))
	return sum[:]
}

func accessTTL() time.Duration {
	return time.Duration(config.ACCESS_TOKEN_HOURS) * time.Hour
}

func refreshTTL() time.Duration {
	return time.Duration(config.REFRESH_TOKEN_DAYS) * 24 * time.Hour
}

func signToken(claims Claims, ttl time.Duration, id string) (token string, expires time.Time, err error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: signingKey()},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", expires, err
	}
	issuedAt := now()
	expires = issuedAt.Add(ttl)
	std := jwt.Claims{
		Subject:  strconv.FormatUint(claims.UserID, 10),
		IssuedAt: jwt.NewNumericDate(issuedAt),
		Expiry:   jwt.NewNumericDate(expires),
		ID:       id,
	}
	token, err = jwt.Signed(signer).Claims(std).Claims(claims).CompactSerialize()
	return token, expires, err
}

func GenerateAccessToken(user *models.User) (string, error) {
	token, _, err := signToken(Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Type:     TokenTypeAccess,
	}, accessTTL(), "")
	return token, err
}

// GenerateRefreshToken signs and stores a new refresh token
func GenerateRefreshToken(user *models.User) (string, error) {
	token, expires, err := signToken(Claims{
		UserID:   user.ID,
		Username: user.Username,
		Type:     TokenTypeRefresh,
	}, refreshTTL(), uuid.NewString())
	if err != nil {
		return "", err
	}
	if err = models.RefreshTokenCreate(user.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

func generateTokenPair(user *models.User) (pair TokenPair, err error) {
	if pair.AccessToken, err = GenerateAccessToken(user); err != nil {
		return
	}
	pair.RefreshToken, err = GenerateRefreshToken(user)
	return
}

// VerifyToken checks the signature, expiry and the token type
func VerifyToken(raw, tokenType string) (*Claims, error) {
	token, err := jwt.ParseSigned(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(token.Headers) != 1 || token.Headers[0].Algorithm != string(jose.HS256) {
		return nil, ErrInvalidToken
	}
	std := jwt.Claims{}
	claims := Claims{}
	if err = token.Claims(signingKey(), &std, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err = std.ValidateWithLeeway(jwt.Expected{Time: now()}, 0); err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if std.Expiry == nil || claims.Type != tokenType || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
