// Package domain holds registration pipeline types and ports
package domain

import "time"

// State is a registration pipeline state
type State string

// Pipeline states, in order. Terminal states are StateSuccess and StateError;
// StateIdle is both the start and the post-Reset state
const (
	StateIdle       State = "idle"
	StatePreparing  State = "preparing"
	StateMinting    State = "minting"
	StateConfirming State = "confirming"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Stage names the step a registration was in when it failed
type Stage string

// Failure stages
const (
	StageStoreImage    Stage = "store_image"
	StageStoreMetadata Stage = "store_metadata"
	StageMint          Stage = "mint"
	StageVerify        Stage = "verify"
)

// RegistrationRequest is everything needed to take one image on chain
type RegistrationRequest struct {
	ImageData []byte
	Prompt    string
	Style     string
	Model     string
	Creator   string
}

// Snapshot is a concurrent-safe copy of a registration's progress
type Snapshot struct {
	ID          string
	State       State
	Stage       Stage
	ImageCID    string
	MetadataCID string
	TxHash      string
	IPAssetID   string
	TokenID     string
	Err         string
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// VerifyStatus is the outcome of one confirmation poll
type VerifyStatus string

// Poll outcomes
const (
	VerifySuccess VerifyStatus = "success"
	VerifyPending VerifyStatus = "pending"
	VerifyFailed  VerifyStatus = "failed"
)

// VerifyResult pairs the poll outcome with the registration snapshot
type VerifyResult struct {
	Status   VerifyStatus
	Snapshot Snapshot
}
