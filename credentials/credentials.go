// Package credentials supplies access credentials to the objstore client.
//
// Credentials are handed around as immutable Value snapshots obtained from a
// Provider. The client requests a fresh snapshot for every operation and
// never caches one, so rotating providers take effect on the next call.
package credentials

import "context"

// Value is an immutable credential snapshot.
type Value struct {
	// AccessKeyID is the public identifier of the key pair
	AccessKeyID string

	// SecretAccessKey is the signing secret
	SecretAccessKey string

	// SessionToken is set for temporary credentials
	SessionToken string
}

// IsAnonymous reports whether the value carries no signing material.
// Requests made with anonymous values are sent unsigned.
func (v Value) IsAnonymous() bool {
	return v.AccessKeyID == "" && v.SecretAccessKey == ""
}

// Provider yields credential snapshots. Implementations must be safe for
// concurrent use: retrievals may race with a rotation, and every caller
// must still observe a complete snapshot.
type Provider interface {
	Retrieve(ctx context.Context) (Value, error)
}
