package util

import "crypto/rand"

// GenerateChallenge returns 32 cryptographically random bytes scoping a single
// ceremony. A CSPRNG failure is fatal to the calling ceremony, there is no
// fallback source.
func GenerateChallenge() []byte {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		panic(err)
	}
	return challenge
}
