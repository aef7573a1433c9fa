// Package service contains IP asset workflows: the storage-only prepare
// path and the full register-and-verify pipeline
package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"ablo/internal/core/metadata"
	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
	"ablo/internal/services/api/assets/domain"
	rdom "ablo/internal/services/registrar/domain"
	sdom "ablo/internal/services/storage/domain"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	store     sdom.ServicePort
	registrar rdom.ServicePort
	log       logger.Logger
}

// New constructs the service
func New(store sdom.ServicePort, registrar rdom.ServicePort) *Svc {
	if store == nil {
		panic("assets.Service requires a non nil storage port")
	}
	if registrar == nil {
		panic("assets.Service requires a non nil registrar port")
	}
	return &Svc{
		store:     store,
		registrar: registrar,
		log:       *logger.Named("assets"),
	}
}

// Prepare stores the image and its metadata without touching the chain and
// returns the refs a later mint would carry
func (s *Svc) Prepare(ctx context.Context, in domain.PrepareInput) (domain.PrepareOutput, error) {
	img, err := decodeImage(in.ImageData)
	if err != nil {
		return domain.PrepareOutput{}, err
	}

	stored, err := s.store.StoreBytes(ctx, img, "")
	if err != nil {
		return domain.PrepareOutput{}, err
	}

	doc := metadata.Build(metadata.BuildInput{
		ImageCID:  stored.CID,
		MediaHash: hexDigest(img),
		Prompt:    in.Prompt,
		Style:     in.Style,
		Model:     in.Model,
		Creator:   in.Creator,
	})
	metaStored, err := s.store.StoreMetadata(ctx, doc, "")
	if err != nil {
		return domain.PrepareOutput{}, err
	}

	metaBytes, err := json.Marshal(doc)
	if err != nil {
		return domain.PrepareOutput{}, perr.Wrap(err, perr.ErrorCodeMetadataFormat, "assets: metadata encode failed")
	}
	metaHash := hexDigest(metaBytes)

	return domain.PrepareOutput{
		ImageCID:    stored.CID,
		MetadataCID: metaStored.CID,
		GatewayURL:  stored.GatewayURL,
		IPMetadata: domain.IPMetadataRefs{
			IPMetadataURI:   "ipfs://" + metaStored.CID,
			IPMetadataHash:  metaHash,
			NFTMetadataURI:  "ipfs://" + metaStored.CID,
			NFTMetadataHash: metaHash,
		},
	}, nil
}

// Register runs the full pipeline up to broadcast
func (s *Svc) Register(ctx context.Context, in domain.RegisterInput) (domain.RegistrationView, error) {
	img, err := decodeImage(in.ImageData)
	if err != nil {
		return domain.RegistrationView{}, err
	}

	snap, err := s.registrar.Begin(ctx, rdom.RegistrationRequest{
		ImageData: img,
		Prompt:    in.Prompt,
		Style:     in.Style,
		Model:     in.Model,
		Creator:   in.Creator,
	})
	if err != nil {
		// the snapshot still carries the failing stage when one exists
		if snap.ID != "" {
			return viewOf(snap), err
		}
		return domain.RegistrationView{}, err
	}
	return viewOf(snap), nil
}

// Verify performs one confirmation poll by registration id or tx hash
func (s *Svc) Verify(ctx context.Context, in domain.VerifyInput) (domain.VerifyOutput, error) {
	var (
		res rdom.VerifyResult
		err error
	)
	if in.ID != "" {
		res, err = s.registrar.Verify(ctx, in.ID)
	} else {
		res, err = s.registrar.VerifyByTx(ctx, in.TxHash)
	}
	if err != nil && res.Status == "" {
		return domain.VerifyOutput{}, err
	}

	out := domain.VerifyOutput{
		Status:    string(res.Status),
		TxHash:    res.Snapshot.TxHash,
		IPAssetID: res.Snapshot.IPAssetID,
		TokenID:   res.Snapshot.TokenID,
		Error:     res.Snapshot.Err,
	}
	return out, nil
}

// Registration returns the current snapshot for a registration id
func (s *Svc) Registration(id string) (domain.RegistrationView, error) {
	snap, err := s.registrar.Snapshot(id)
	if err != nil {
		return domain.RegistrationView{}, err
	}
	return viewOf(snap), nil
}

func viewOf(snap rdom.Snapshot) domain.RegistrationView {
	return domain.RegistrationView{
		ID:          snap.ID,
		State:       string(snap.State),
		Stage:       string(snap.Stage),
		ImageCID:    snap.ImageCID,
		MetadataCID: snap.MetadataCID,
		TxHash:      snap.TxHash,
		IPAssetID:   snap.IPAssetID,
		TokenID:     snap.TokenID,
		Error:       snap.Err,
	}
}

// decodeImage accepts plain base64 or a data URI and returns the raw bytes
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	img, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, perr.InvalidArgf("image_data is not valid base64")
	}
	if len(img) == 0 {
		return nil, perr.InvalidArgf("image_data is empty")
	}
	return img, nil
}

func hexDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return "0x" + hex.EncodeToString(sum[:])
}
