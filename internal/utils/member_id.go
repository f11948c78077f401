package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/yukikurage/workboard-api/internal/constants"
)

var memberIDSpan = big.NewInt(900000)

// GenerateMemberID returns a random 6-digit numeric identifier in the range
// 100000-999999.
func GenerateMemberID() (string, error) {
	n, err := rand.Int(rand.Reader, memberIDSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate random member id: %w", err)
	}
	return fmt.Sprintf("%0*d", constants.MemberIDDigits, n.Int64()+100000), nil
}

// IsMemberID reports whether s is exactly six ASCII digits.
func IsMemberID(s string) bool {
	if len(s) != constants.MemberIDDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
