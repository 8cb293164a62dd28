package video

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RolePublisher lets the holder send audio and video, not just join.
const RolePublisher = "publisher"

// TokenIssuer signs credentials the video provider accepts for joining a channel.
type TokenIssuer interface {
	Issue(channel string, uid int, role string, expiresAt time.Time) (string, error)
}

var ErrNotConfigured = errors.New("video provider credentials are not configured")

type channelGrant struct {
	Channel string `json:"channel"`
	Join    bool   `json:"join"`
	Publish bool   `json:"publish"`
}

type channelClaims struct {
	Grant channelGrant `json:"video"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 channel credentials with the provider app certificate.
type JWTIssuer struct {
	appID       string
	certificate []byte
	now         func() time.Time
}

func NewJWTIssuer(appID, certificate string) *JWTIssuer {
	return &JWTIssuer{appID: appID, certificate: []byte(certificate), now: time.Now}
}

func (i *JWTIssuer) Issue(channel string, uid int, role string, expiresAt time.Time) (string, error) {
	if i.appID == "" || len(i.certificate) == 0 {
		return "", ErrNotConfigured
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, channelClaims{
		Grant: channelGrant{
			Channel: channel,
			Join:    true,
			Publish: role == RolePublisher,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.appID,
			Subject:   strconv.Itoa(uid),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(i.certificate)
	if err != nil {
		return "", fmt.Errorf("failed to sign channel token: %w", err)
	}
	return signed, nil
}
