package domain

import "errors"

// Error taxonomy shared by every layer. Lower layers wrap these with
// fmt.Errorf("%w: ...") and callers classify with errors.Is.
var (
	// ErrConfiguration means the cipher passphrase or salt (or another required setting) is absent.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotAuthenticated means no user identity could be resolved for the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotConnected means no credential record exists for the (user, broker) pair.
	ErrNotConnected = errors.New("broker not connected")

	// ErrBrokerAuth means the broker rejected the token handshake or it could not complete.
	ErrBrokerAuth = errors.New("broker authentication failed")

	// ErrBrokerData means a holdings, positions or price request failed.
	ErrBrokerData = errors.New("broker data request failed")

	// ErrIntegrity means an authentication tag did not verify on decryption.
	ErrIntegrity = errors.New("credential integrity check failed")

	// ErrStore means the persistence layer failed.
	ErrStore = errors.New("credential store error")

	// ErrMalformedRecord means a stored encrypted field does not have the packed shape.
	ErrMalformedRecord = errors.New("malformed credential record")

	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedBroker = errors.New("broker integration not available yet")
)

// ErrorKind is the stable, machine-readable classification of a failed operation.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotConnected     ErrorKind = "not_connected"
	KindBrokerAuth       ErrorKind = "broker_auth"
	KindBrokerData       ErrorKind = "broker_data"
	KindIntegrity        ErrorKind = "integrity"
	KindStore            ErrorKind = "store"
	KindMalformedRecord  ErrorKind = "malformed_record"
	KindConfiguration    ErrorKind = "configuration"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindInternal         ErrorKind = "internal"
)

// Classify maps an error chain onto its ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, ErrNotConnected):
		return KindNotConnected
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrBrokerAuth), errors.Is(err, ErrUnsupportedBroker):
		return KindBrokerAuth
	case errors.Is(err, ErrBrokerData):
		return KindBrokerData
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, ErrStore):
		return KindStore
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}
