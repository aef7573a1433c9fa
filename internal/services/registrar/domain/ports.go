package domain

import (
	"context"

	"ablo/internal/adapters/chain/story"
)

// ServicePort is the interface implemented by the registrar
type ServicePort interface {
	Begin(ctx context.Context, req RegistrationRequest) (Snapshot, error)
	Verify(ctx context.Context, id string) (VerifyResult, error)
	VerifyByTx(ctx context.Context, txHash string) (VerifyResult, error)
	Reset(id string) (Snapshot, error)
	Snapshot(id string) (Snapshot, error)
}

// ChainPort is the slice of the chain client the registrar needs
type ChainPort interface {
	SubmitRegistration(ctx context.Context, p story.MintParams) (story.MintReceipt, error)
	AssetByTx(ctx context.Context, txHash string) (story.AssetRecord, error)
}
