package utils

import (
	"errors"
	"fmt"
	"time"

	"jios-backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess 唯一被接受的令牌类型
const TokenTypeAccess = "access"

// DefaultAccessTTL 访问令牌默认有效期
const DefaultAccessTTL = 15 * time.Minute

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenType      = errors.New("invalid token type")
	ErrTokenMalformed = errors.New("invalid token")
)

// JWTService JWT服务
//
// Access tokens are issued by the external auth service with a shared HS256
// secret. This side verifies them; minting exists for local development.
type JWTService struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// GenerateAccessToken 生成访问令牌
func (j *JWTService) GenerateAccessToken(userID, email string, ttl time.Duration) (string, int64, error) {
	if userID == "" {
		return "", 0, fmt.Errorf("user id is required")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}

	now := j.now()
	expiry := now.Add(ttl)
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, expiry.Unix(), nil
}

// ValidateToken 验证令牌
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	// 只接受access token
	if claims.Type != TokenTypeAccess {
		return nil, fmt.Errorf("%w: %s", ErrTokenType, claims.Type)
	}

	return claims, nil
}

// ExtractUserFromToken 从令牌中提取用户信息
func (j *JWTService) ExtractUserFromToken(tokenString string) (*models.User, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:    claims.UserID,
		Email: claims.Email,
	}, nil
}
