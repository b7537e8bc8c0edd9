package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"regexp"
	"strings"
)

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const ReferencePrefix = "DRM-"

// GenerateReferenceCode builds a booking reference like "DRM-7K2MQ4XD".
// crypto/rand + big.Int keeps the charset draw bias-free.
func GenerateReferenceCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	sb.WriteString(ReferencePrefix)
	alphaLen := big.NewInt(int64(len(referenceCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referenceCharset[num.Int64()])
	}
	return sb.String(), nil
}

var roomNumberPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// NormalizeRoomNumber trims and uppercases a room number token.
func NormalizeRoomNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsValidRoomNumber validates an already-normalized room number.
func IsValidRoomNumber(s string) bool {
	return s != "" && len(s) <= 50 && roomNumberPattern.MatchString(s)
}
