// Package callback builds the signed merchant notification for an
// asynchronous upstream outcome and delivers it with retry.
package callback

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Payload is the plaintext notification body. Reason is only present on
// declined payments.
type Payload struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

const (
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Approved builds an approved notification payload.
func Approved(currency string, amount int) Payload {
	return Payload{Status: StatusApproved, Currency: currency, Amount: amount}
}

// Declined builds a declined notification payload carrying the upstream's
// status description.
func Declined(reason, currency string, amount int) Payload {
	return Payload{Status: StatusDeclined, Reason: reason, Currency: currency, Amount: amount}
}

// Signer produces the bearer token for merchant callbacks: a 3-segment HS512
// token whose payload is the notification merged with the merchant's private
// key encrypted under the process-wide signing key. The exact byte layout is
// a compatibility contract with existing receivers.
type Signer struct {
	key [32]byte
}

// NewSigner validates the process-wide signing key. Anything but 32 bytes is
// a fatal configuration error.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("signing key must be 32 bytes, got %d", len(key))
	}
	s := &Signer{}
	copy(s.key[:], key)
	return s, nil
}

// Sign encrypts the merchant's private key (never the payload itself) and
// signs the combined claims with HMAC-SHA512.
func (s *Signer) Sign(p Payload, merchantKey string) (string, error) {
	var iv [16]byte
	if _, err := rand.Read(iv[:]); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	encrypted, ivValue, err := encryptMerchantKey(merchantKey, s.key, iv)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"status":   p.Status,
		"currency": p.Currency,
		"amount":   p.Amount,
		"secure": map[string]string{
			"encrypted_data": encrypted,
			"iv_value":       ivValue,
		},
	}
	if p.Status == StatusDeclined {
		claims["reason"] = p.Reason
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(s.key[:])
}

// encryptMerchantKey runs AES-256-CBC with PKCS7 padding and returns the
// base64 ciphertext and base64 IV.
func encryptMerchantKey(merchantKey string, key [32]byte, iv [16]byte) (string, string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", "", err
	}

	plain := pkcs7Pad([]byte(merchantKey), aes.BlockSize)
	encrypted := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(encrypted, plain)

	return base64.StdEncoding.EncodeToString(encrypted),
		base64.StdEncoding.EncodeToString(iv[:]),
		nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	padding := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padding)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}
