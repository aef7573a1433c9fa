// Package domain holds storage facade types and ports
package domain

import "time"

// StoredObject describes content after a successful dual write
type StoredObject struct {
	// CID is the authoritative content id (the pinning service's answer)
	CID string
	// LocalCID is what the local store derived; normally equal to CID
	LocalCID string
	Size     int64
	// GatewayURL is a public URL serving the content
	GatewayURL string
}

// RetryPolicy shapes the local read retry loop
type RetryPolicy struct {
	// MaxAttempts is the number of local read attempts before falling back
	MaxAttempts int
	// Backoff is the linear backoff unit: attempt n sleeps n*Backoff
	Backoff time.Duration
	// AttemptTimeout bounds each individual local attempt
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy matches the retrieval contract: three local attempts
// with linear one second backoff, each bounded at thirty seconds
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		Backoff:        time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}
