package credentials

import (
	"context"
	"os"
	"sync"
)

// Static holds a fixed credential pair. Update replaces the pair atomically
// so that concurrent retrievals never observe a half-rotated snapshot.
type Static struct {
	mu    sync.RWMutex
	value Value
}

// NewStatic creates a Static provider from the given key pair.
// sessionToken may be empty for long-lived credentials.
func NewStatic(accessKeyID, secretAccessKey, sessionToken string) *Static {
	return &Static{
		value: Value{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			SessionToken:    sessionToken,
		},
	}
}

// Retrieve implements Provider.
func (s *Static) Retrieve(_ context.Context) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

// Update replaces the stored credentials. In-flight operations keep the
// snapshot they already retrieved; later operations see the new pair.
func (s *Static) Update(v Value) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

// Anonymous provides empty credentials for unsigned access to public
// resources.
type Anonymous struct{}

// NewAnonymous creates an Anonymous provider.
func NewAnonymous() *Anonymous {
	return &Anonymous{}
}

// Retrieve implements Provider.
func (*Anonymous) Retrieve(_ context.Context) (Value, error) {
	return Value{}, nil
}

// FromEnv reads credentials from the standard AWS environment variables.
// A fresh snapshot is built on every retrieval, so environment changes are
// picked up by later operations.
type FromEnv struct{}

// NewFromEnv creates a FromEnv provider.
func NewFromEnv() *FromEnv {
	return &FromEnv{}
}

// Retrieve implements Provider. Missing variables yield an anonymous value
// rather than an error.
func (*FromEnv) Retrieve(_ context.Context) (Value, error) {
	access := os.Getenv("AWS_ACCESS_KEY_ID")
	if access == "" {
		access = os.Getenv("AWS_ACCESS_KEY")
	}
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if secret == "" {
		secret = os.Getenv("AWS_SECRET_KEY")
	}
	return Value{
		AccessKeyID:     access,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}, nil
}

// Chain tries each provider in order and returns the first snapshot that
// carries signing material. An all-anonymous chain yields the anonymous
// value, not an error; a provider failure stops the chain immediately.
type Chain struct {
	providers []Provider
}

// NewChain creates a Chain over the given providers.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Retrieve implements Provider.
func (c *Chain) Retrieve(ctx context.Context) (Value, error) {
	for _, p := range c.providers {
		v, err := p.Retrieve(ctx)
		if err != nil {
			return Value{}, err
		}
		if !v.IsAnonymous() {
			return v, nil
		}
	}
	return Value{}, nil
}
