package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HmacSHA256 computes the hex-encoded HMAC-SHA256 of data with the given key.
func HmacSHA256(key, data []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEqual compares two strings in constant time.
func ConstantTimeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
