package jwt

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

func Decode(token string, secret string) (*Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("jwt.Decode: invalid token length")
	}

	payloadJson, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("jwt.Decode: can't decode payload: %w", err)
	}
	var payload Payload
	if err := json.Unmarshal(payloadJson, &payload); err != nil {
		return nil, fmt.Errorf("jwt.Decode: can't unmarshal payload: %w", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("jwt.Decode: can't decode signature: %w", err)
	}
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(parts[0] + "." + parts[1]))

	if !hmac.Equal(h.Sum(nil), signature) {
		return nil, fmt.Errorf("jwt.Decode: invalid signature")
	}

	return &payload, nil
}
