package domain

import "context"

// BrokerClient defines the broker-agnostic session and portfolio read operations.
// Each broker integration provides an adapter implementing it.
type BrokerClient interface {
	// IssueToken performs the signed-checksum handshake and returns a fresh session token
	IssueToken(ctx context.Context, apiKey, apiSecret string) (*AccessToken, error)

	// FetchHoldings returns the demat holdings of the token's account
	FetchHoldings(ctx context.Context, token *AccessToken) ([]RawHolding, error)

	// FetchPositions returns the positions of the token's account for a segment
	FetchPositions(ctx context.Context, token *AccessToken, segment Segment) ([]RawPosition, error)

	// FetchLastTradedPrices returns last traded prices keyed by bare trading symbol.
	// An empty symbol list yields an empty map without network I/O.
	FetchLastTradedPrices(ctx context.Context, token *AccessToken, symbols []string, exchange string) (map[string]float64, error)
}

// BrokerClientProvider dispatches to the BrokerClient registered for a BrokerKind
type BrokerClientProvider interface {
	ClientFor(kind BrokerKind) (BrokerClient, error)
}

// CredentialStore persists encrypted credential records.
// All failures are wrapped in ErrStore.
type CredentialStore interface {
	// Upsert atomically inserts or replaces the record for (userID, broker)
	Upsert(ctx context.Context, userID UserIdentity, broker BrokerKind, creds EncryptedCredentials) error

	// Find returns the record for (userID, broker), or nil when absent
	Find(ctx context.Context, userID UserIdentity, broker BrokerKind) (*CredentialRecord, error)

	// ListForUser returns every record owned by userID
	ListForUser(ctx context.Context, userID UserIdentity) ([]CredentialRecord, error)

	// Delete removes the record for (userID, broker); deleting nothing is not an error
	Delete(ctx context.Context, userID UserIdentity, broker BrokerKind) error
}

// ProfileStore persists user profiles
type ProfileStore interface {
	Upsert(ctx context.Context, principal Principal) (*UserProfile, error)
	Get(ctx context.Context, id UserIdentity) (*UserProfile, error)
}

// CredentialCipher seals and opens API credential pairs
type CredentialCipher interface {
	EncryptCredentialPair(apiKey, apiSecret string) (*EncryptedCredentials, error)
	DecryptCredentialPair(creds EncryptedCredentials) (apiKey, apiSecret string, err error)
}

// IdentityResolver yields the identity of the current caller, if any
type IdentityResolver interface {
	ResolveCurrentIdentity(ctx context.Context) (UserIdentity, bool)
}
