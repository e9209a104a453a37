package request

type CredentialRegisteredEvent struct {
	UserId       uint   `json:"user_id"`
	Email        string `json:"email"`
	CredentialId string `json:"credential_id"`
	DeviceName   string `json:"device_name"`
}

type ReplaySuspectedEvent struct {
	UserId        uint   `json:"user_id"`
	CredentialId  string `json:"credential_id"`
	StoredCount   uint32 `json:"stored_count"`
	ReportedCount uint32 `json:"reported_count"`
}

type LoginArtifactIssuedEvent struct {
	Email string `json:"email"`
}
