package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leviathan-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "leviathan-server"

// Audience is the intended JWT audience
const Audience = "leviathan"

// DefaultTTL is how long a signed token is valid for
const DefaultTTL = time.Hour * 24

var publicKey *rsa.PublicKey
var privateKey *rsa.PrivateKey

// LoadKeys will load the public and private keys
// this method should only be called once.
func LoadKeys() error {
	cfg := config.Instance().JWT

	private, err := loadPrivateKey(cfg.PrivateKey)
	if err != nil {
		return err
	}

	public, err := loadPublicKey(cfg.PublicKey)
	if err != nil {
		return err
	}

	UseKeys(private, public)
	return nil
}

// LoadPublicKey loads only the public key, enough to validate tokens
func LoadPublicKey() error {
	public, err := loadPublicKey(config.Instance().JWT.PublicKey)
	if err != nil {
		return err
	}

	publicKey = public
	return nil
}

// UseKeys sets the keys directly
func UseKeys(private *rsa.PrivateKey, public *rsa.PublicKey) {
	privateKey = private
	publicKey = public
}

// Sign will sign a JWT for the player (wallet) ID
// A ttl <= 0 uses DefaultTTL.
func Sign(playerID string, ttl time.Duration) (string, error) {
	if privateKey == nil {
		panic("LoadKeys() not called")
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(now),
		ExpiresAt: jwtgo.NewNumericDate(now.Add(ttl)),
		Issuer:    Issuer,
		Subject:   playerID,
	})

	return token.SignedString(privateKey)
}

// ValidPlayerID will validate a signed JWT and return the player ID
func ValidPlayerID(signedString string) (string, error) {
	if publicKey == nil {
		panic("LoadKeys() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodRSA); !ok {
			return nil, errors.New("expected RS256 signing method")
		}

		return publicKey, nil
	})

	if err != nil {
		return "", err
	}

	if token.Valid {
		if claims, ok := token.Claims.(*jwtgo.RegisteredClaims); ok {
			if !containsAudience(claims.Audience, Audience) {
				return "", errors.New("invalid audience")
			}

			if claims.Issuer != Issuer {
				return "", errors.New("invalid issuer")
			}

			if claims.Subject == "" {
				return "", errors.New("missing subject")
			}

			return claims.Subject, nil
		}

		return "", fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	logrus.Warn("token claims were not valid. did not expect to reach this code")
	return "", errors.New("claims were not valid")
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read public key: %w", err)
	}

	key, err := jwtgo.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return key, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}

	key, err := jwtgo.ParseRSAPrivateKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	return key, nil
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
