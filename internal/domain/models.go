package domain

import "time"

// UserIdentity is the opaque id of an authenticated principal.
// It partitions every credential row; no operation crosses identities.
type UserIdentity string

// Principal is the signed-in user as asserted by the upstream identity provider
type Principal struct {
	ID    UserIdentity
	Email string
	Name  string
	Image string
}

// UserProfile is the locally persisted copy of a principal
type UserProfile struct {
	ID        UserIdentity `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name,omitempty"`
	Image     string       `json:"image,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// EncryptedCredentials are the four persisted cipher fields of a credential pair.
// EncryptedAPIKey and EncryptedAPISecret are "<hex ciphertext>:<hex tag>";
// IV and IVSecret are the hex nonces used for each.
type EncryptedCredentials struct {
	EncryptedAPIKey    string
	EncryptedAPISecret string
	IV                 string
	IVSecret           string
}

// CredentialRecord is the stored, encrypted API credential pair for one (user, broker)
type CredentialRecord struct {
	EncryptedCredentials
	ID        string
	UserID    UserIdentity
	Broker    BrokerKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BrokerConnection is the public connection status of a broker for a user
type BrokerConnection struct {
	Broker      BrokerKind `json:"broker"`
	Connected   bool       `json:"connected"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}
