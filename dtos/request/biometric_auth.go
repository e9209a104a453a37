package request

// BootstrapRequest is the body of the privileged session-bootstrap endpoint.
// UserId and CredentialId both come from a verified assertion on the client.
type BootstrapRequest struct {
	UserId       uint   `json:"userId"`
	CredentialId string `json:"credentialId"`
}
