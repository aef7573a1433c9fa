package domain

import (
	"context"

	"ablo/internal/adapters/pin/pinata"
)

// ServicePort is the interface implemented by the storage facade
type ServicePort interface {
	StoreBytes(ctx context.Context, data []byte, name string) (StoredObject, error)
	StoreMetadata(ctx context.Context, doc any, name string) (StoredObject, error)
	Retrieve(ctx context.Context, cid string) ([]byte, error)
	RetrieveMetadata(ctx context.Context, cid string, out any) error
	Exists(ctx context.Context, cid string) (bool, error)
	GatewayURL(cid string) string
}

// RemotePort is the slice of the pinning client the facade needs
type RemotePort interface {
	PinFile(ctx context.Context, data []byte, filename string, meta pinata.PinMeta) (pinata.PinResult, error)
	PinJSON(ctx context.Context, content []byte, meta pinata.PinMeta) (pinata.PinResult, error)
	Fetch(ctx context.Context, cid string) ([]byte, error)
	Head(ctx context.Context, cid string) (bool, error)
	GatewayURL(cid string) string
}
