// Package service implements the registration pipeline: store the image,
// build and store its metadata, mint-and-register on chain, then confirm
// through caller-driven polling
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ablo/internal/adapters/chain/story"
	"ablo/internal/core/metadata"
	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
	"ablo/internal/services/registrar/domain"
	sdom "ablo/internal/services/storage/domain"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// registration is the mutable pipeline record; guarded by Svc.mu
type registration struct {
	id          string
	state       domain.State
	stage       domain.Stage
	imageCID    string
	metadataCID string
	txHash      string
	ipAssetID   string
	tokenID     string
	err         string
	submittedAt time.Time
	updatedAt   time.Time
}

// Svc implements the service port
type Svc struct {
	store sdom.ServicePort
	chain domain.ChainPort

	verifyDelay time.Duration

	mu   sync.Mutex
	regs map[string]*registration

	log logger.Logger
	now func() time.Time
}

// Options control service behavior
type Options struct {
	// VerifyDelay is the minimum age a broadcast must reach before Verify
	// queries the chain; earlier polls report pending without a round trip
	VerifyDelay time.Duration
}

const verifyDelayDefault = 5 * time.Second

// New constructs the registrar
func New(store sdom.ServicePort, chain domain.ChainPort, opt Options) *Svc {
	if store == nil {
		panic("registrar.Service requires a non nil storage port")
	}
	if chain == nil {
		panic("registrar.Service requires a non nil chain port")
	}
	d := opt.VerifyDelay
	if d <= 0 {
		d = verifyDelayDefault
	}
	return &Svc{
		store:       store,
		chain:       chain,
		verifyDelay: d,
		regs:        make(map[string]*registration),
		log:         *logger.Named("registrar"),
		now:         time.Now,
	}
}

// Begin runs the synchronous half of the pipeline. It walks
// preparing then minting and parks the registration in confirming once a tx
// hash exists; any stage failure lands in error with the stage recorded
func (s *Svc) Begin(ctx context.Context, req domain.RegistrationRequest) (domain.Snapshot, error) {
	if len(req.ImageData) == 0 {
		return domain.Snapshot{}, perr.InvalidArgf("registrar: image data is required")
	}
	if req.Prompt == "" {
		return domain.Snapshot{}, perr.InvalidArgf("registrar: prompt is required")
	}

	reg := &registration{
		id:        uuid.NewString(),
		state:     domain.StateIdle,
		updatedAt: s.now(),
	}
	s.mu.Lock()
	s.regs[reg.id] = reg
	s.mu.Unlock()

	s.transition(reg, domain.StatePreparing)

	img, err := s.store.StoreBytes(ctx, req.ImageData, "")
	if err != nil {
		return s.fail(reg, domain.StageStoreImage, err), err
	}
	s.setCIDs(reg, img.CID, "")

	doc := metadata.Build(metadata.BuildInput{
		ImageCID:  img.CID,
		MediaHash: hexDigest(req.ImageData),
		Prompt:    req.Prompt,
		Style:     req.Style,
		Model:     req.Model,
		Creator:   req.Creator,
	})

	meta, err := s.store.StoreMetadata(ctx, doc, "")
	if err != nil {
		return s.fail(reg, domain.StageStoreMetadata, err), err
	}
	s.setCIDs(reg, img.CID, meta.CID)

	s.transition(reg, domain.StateMinting)

	metaBytes, err := canonicalMetadata(doc)
	if err != nil {
		return s.fail(reg, domain.StageMint, err), err
	}
	receipt, err := s.chain.SubmitRegistration(ctx, story.MintParams{
		MetadataURI:     "ipfs://" + meta.CID,
		MetadataHash:    hexDigest(metaBytes),
		NFTMetadataURI:  "ipfs://" + meta.CID,
		NFTMetadataHash: hexDigest(metaBytes),
		Recipient:       req.Creator,
	})
	if err != nil {
		return s.fail(reg, domain.StageMint, err), err
	}

	s.mu.Lock()
	reg.txHash = receipt.TxHash
	reg.submittedAt = s.now()
	if receipt.IPAssetID != "" {
		// relay waited for inclusion; nothing left to confirm
		reg.ipAssetID = receipt.IPAssetID
		reg.tokenID = receipt.TokenID
		reg.state = domain.StateSuccess
	} else {
		reg.state = domain.StateConfirming
	}
	reg.updatedAt = s.now()
	snap := snapshotOf(reg)
	s.mu.Unlock()

	s.log.Info().
		Str("registration_id", snap.ID).
		Str("tx_hash", snap.TxHash).
		Str("image_cid", snap.ImageCID).
		Str("metadata_cid", snap.MetadataCID).
		Msg("registration broadcast")
	return snap, nil
}

// Verify performs one confirmation poll for a registration
func (s *Svc) Verify(ctx context.Context, id string) (domain.VerifyResult, error) {
	s.mu.Lock()
	reg, ok := s.regs[id]
	if !ok {
		s.mu.Unlock()
		return domain.VerifyResult{}, perr.NotFoundf("registration %s not found", id)
	}
	snap := snapshotOf(reg)
	s.mu.Unlock()

	switch snap.State {
	case domain.StateSuccess:
		return domain.VerifyResult{Status: domain.VerifySuccess, Snapshot: snap}, nil
	case domain.StateError:
		return domain.VerifyResult{Status: domain.VerifyFailed, Snapshot: snap}, nil
	case domain.StateConfirming:
		// fall through to the chain poll
	default:
		return domain.VerifyResult{}, perr.InvalidArgf("registration %s has no broadcast to verify", id)
	}

	// give the indexer a head start; the tx cannot be visible instantly
	if s.now().Sub(snap.SubmittedAt) < s.verifyDelay {
		return domain.VerifyResult{Status: domain.VerifyPending, Snapshot: snap}, nil
	}

	rec, err := s.chain.AssetByTx(ctx, snap.TxHash)
	if err != nil && (errors.Is(err, story.ErrPending) || perr.IsCode(err, perr.ErrorCodeNotFound)) {
		// not indexed yet; stay in confirming
		return domain.VerifyResult{Status: domain.VerifyPending, Snapshot: snap}, nil
	}

	s.mu.Lock()
	if reg.state != domain.StateConfirming {
		// the registration changed hands while the chain lookup was in
		// flight (a reset, or another poll resolved it); the lookup result
		// belongs to the old broadcast and is discarded
		s.mu.Unlock()
		return domain.VerifyResult{}, perr.InvalidArgf("registration %s has no broadcast to verify", id)
	}
	if err != nil {
		snap = s.failLocked(reg, domain.StageVerify, err)
		s.mu.Unlock()
		return domain.VerifyResult{Status: domain.VerifyFailed, Snapshot: snap}, err
	}
	reg.ipAssetID = rec.IPAssetID
	reg.tokenID = rec.TokenID
	reg.state = domain.StateSuccess
	reg.updatedAt = s.now()
	snap = snapshotOf(reg)
	s.mu.Unlock()

	s.log.Info().
		Str("registration_id", id).
		Str("ip_asset_id", rec.IPAssetID).
		Msg("registration confirmed")
	return domain.VerifyResult{Status: domain.VerifySuccess, Snapshot: snap}, nil
}

// VerifyByTx polls by transaction hash. A tx owned by a known registration
// goes through Verify; an unknown tx is checked directly against the chain
// and reported without being tracked
func (s *Svc) VerifyByTx(ctx context.Context, txHash string) (domain.VerifyResult, error) {
	if txHash == "" {
		return domain.VerifyResult{}, perr.InvalidArgf("registrar: tx hash is required")
	}

	s.mu.Lock()
	var owner string
	for id, reg := range s.regs {
		if reg.txHash == txHash {
			owner = id
			break
		}
	}
	s.mu.Unlock()

	if owner != "" {
		return s.Verify(ctx, owner)
	}

	rec, err := s.chain.AssetByTx(ctx, txHash)
	switch {
	case err == nil:
		return domain.VerifyResult{
			Status: domain.VerifySuccess,
			Snapshot: domain.Snapshot{
				State:     domain.StateSuccess,
				TxHash:    txHash,
				IPAssetID: rec.IPAssetID,
				TokenID:   rec.TokenID,
			},
		}, nil
	case errors.Is(err, story.ErrPending), perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.VerifyResult{
			Status:   domain.VerifyPending,
			Snapshot: domain.Snapshot{State: domain.StateConfirming, TxHash: txHash},
		}, nil
	default:
		return domain.VerifyResult{}, err
	}
}

// Reset returns a registration to idle and discards its progress. A tx
// already broadcast stays on chain; reset only abandons tracking
func (s *Svc) Reset(id string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[id]
	if !ok {
		return domain.Snapshot{}, perr.NotFoundf("registration %s not found", id)
	}
	*reg = registration{id: reg.id, state: domain.StateIdle, updatedAt: s.now()}
	return snapshotOf(reg), nil
}

// Snapshot returns a copy of the registration's progress
func (s *Svc) Snapshot(id string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[id]
	if !ok {
		return domain.Snapshot{}, perr.NotFoundf("registration %s not found", id)
	}
	return snapshotOf(reg), nil
}

func (s *Svc) transition(reg *registration, to domain.State) {
	s.mu.Lock()
	reg.state = to
	reg.updatedAt = s.now()
	s.mu.Unlock()
}

func (s *Svc) setCIDs(reg *registration, image, meta string) {
	s.mu.Lock()
	if image != "" {
		reg.imageCID = image
	}
	if meta != "" {
		reg.metadataCID = meta
	}
	reg.updatedAt = s.now()
	s.mu.Unlock()
}

func (s *Svc) fail(reg *registration, stage domain.Stage, cause error) domain.Snapshot {
	s.mu.Lock()
	snap := s.failLocked(reg, stage, cause)
	s.mu.Unlock()
	return snap
}

// failLocked is fail for callers already holding s.mu
func (s *Svc) failLocked(reg *registration, stage domain.Stage, cause error) domain.Snapshot {
	reg.state = domain.StateError
	reg.stage = stage
	reg.err = cause.Error()
	reg.updatedAt = s.now()

	s.log.Error().
		Str("registration_id", reg.id).
		Str("stage", string(stage)).
		Err(cause).
		Msg("registration failed")
	return snapshotOf(reg)
}

// snapshotOf copies reg; callers must hold s.mu
func snapshotOf(reg *registration) domain.Snapshot {
	return domain.Snapshot{
		ID:          reg.id,
		State:       reg.state,
		Stage:       reg.stage,
		ImageCID:    reg.imageCID,
		MetadataCID: reg.metadataCID,
		TxHash:      reg.txHash,
		IPAssetID:   reg.ipAssetID,
		TokenID:     reg.tokenID,
		Err:         reg.err,
		SubmittedAt: reg.submittedAt,
		UpdatedAt:   reg.updatedAt,
	}
}

// hexDigest is the 0x-prefixed sha256 of content, the hash form the chain
// metadata fields expect
func hexDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return "0x" + hex.EncodeToString(sum[:])
}

// canonicalMetadata re-serializes the document exactly as StoreMetadata did,
// so the on-chain hash matches the pinned bytes
func canonicalMetadata(doc metadata.AssetMetadata) ([]byte, error) {
	return json.Marshal(doc)
}
