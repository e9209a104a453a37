package domain

import "errors"

// Error taxonomy for the biometric authentication flows. Controllers map these
// to HTTP statuses with errors.Is instead of matching on message strings.
var (
	ErrValidation            = errors.New("missing required fields: userId and credentialId")
	ErrCapabilityUnavailable = errors.New("biometric authentication unavailable on this device")
	ErrCeremonyCancelled     = errors.New("authentication cancelled or unauthorized")
	ErrCredentialExists      = errors.New("credential already registered")
	ErrCredentialInvalid     = errors.New("invalid or inactive credential")
	ErrCredentialOwnership   = errors.New("credential does not belong to this user")
	ErrReplaySuspected       = errors.New("replay suspected, authentication rejected")
	ErrUserInactive          = errors.New("user not found or inactive")
	ErrArtifactInvalid       = errors.New("login code invalid or expired")
	ErrUpstreamFailure       = errors.New("failed to generate authentication token")
)
