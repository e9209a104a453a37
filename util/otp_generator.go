package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6 digit one-time code backed by crypto/rand. The code
// stands in for a password during the biometric login exchange, so math/rand
// is not acceptable here.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// GenerateHashedToken returns the link-style variant of the login artifact,
// a 32 byte random value hex encoded.
func GenerateHashedToken() string {
	return hex.EncodeToString(GenerateChallenge())
}
