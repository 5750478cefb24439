package api

import (
	"errors"
	"fmt"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of reader tokens issued without an explicit ttl.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "fluxd"

// AuthService issues and validates reader tokens.
type AuthService struct {
	jwtSecret []byte
}

// ReaderClaims binds a token to the account whose read access is checked.
type ReaderClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// NewAuthService creates a token service signing with jwtSecret.
func NewAuthService(jwtSecret []byte) *AuthService {
	return &AuthService{jwtSecret: jwtSecret}
}

// IssueToken returns a signed token for reader valid for ttl.
func (as *AuthService) IssueToken(reader sdk.AccAddress, ttl time.Duration) (string, error) {
	if reader.Empty() {
		return "", errors.New("reader address is required")
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := &ReaderClaims{
		Address: reader.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   reader.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecret)
}

// ValidateToken parses tokenString and checks its signature and expiry.
func (as *AuthService) ValidateToken(tokenString string) (*ReaderClaims, error) {
	claims := &ReaderClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return as.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Reader returns the account a valid token was issued to.
func (as *AuthService) Reader(tokenString string) (sdk.AccAddress, error) {
	claims, err := as.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	reader, err := sdk.AccAddressFromBech32(claims.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid reader address in token: %w", err)
	}
	return reader, nil
}
