// Package service implements the content storage facade: every write lands
// in the local store and on the pinning service, every read prefers local
// and falls back to the remote gateway
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"

	"ablo/internal/core/cas"
	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
	"ablo/internal/services/storage/domain"

	"ablo/internal/adapters/pin/pinata"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	local  cas.Store
	remote domain.RemotePort
	retry  domain.RetryPolicy
	log    logger.Logger
	sleep  func(time.Duration)
}

// Options control service behavior
type Options struct {
	// Retry shapes the local read loop; zero fields take defaults
	Retry domain.RetryPolicy
}

// New constructs the facade
func New(local cas.Store, remote domain.RemotePort, opt Options) *Svc {
	if local == nil {
		panic("storage.Service requires a non nil local Store")
	}
	if remote == nil {
		panic("storage.Service requires a non nil RemotePort")
	}

	r := opt.Retry
	def := domain.DefaultRetryPolicy()
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = def.MaxAttempts
	}
	if r.Backoff <= 0 {
		r.Backoff = def.Backoff
	}
	if r.AttemptTimeout <= 0 {
		r.AttemptTimeout = def.AttemptTimeout
	}

	return &Svc{
		local:  local,
		remote: remote,
		retry:  r,
		log:    *logger.Named("storage"),
		sleep:  time.Sleep,
	}
}

// StoreBytes writes content to the local store, then pins it remotely.
// The pin is the durability contract: a local write failure alone is
// logged and the write succeeds on the pin (LocalCID left empty), while
// a pin failure fails the write. The pinning service's CID is
// authoritative; a divergent local CID is logged and the remote wins
func (s *Svc) StoreBytes(ctx context.Context, data []byte, name string) (domain.StoredObject, error) {
	if len(data) == 0 {
		return domain.StoredObject{}, perr.InvalidArgf("storage: empty content")
	}

	localCID, localErr := s.putLocal(data)

	pn := pinName(name)
	res, err := s.remote.PinFile(ctx, data, pn, pinata.PinMeta{Name: pn})
	if err != nil {
		// content without a pin is not durably stored; fail the write
		if localErr != nil {
			return domain.StoredObject{}, perr.Wrap(err, perr.ErrorCodeStorageUnavailable, "storage: both stores rejected the write")
		}
		return domain.StoredObject{}, err
	}

	s.checkMirror(localCID, res.IpfsHash)

	return domain.StoredObject{
		CID:        res.IpfsHash,
		LocalCID:   localCID,
		Size:       int64(len(data)),
		GatewayURL: s.remote.GatewayURL(res.IpfsHash),
	}, nil
}

// StoreMetadata marshals doc once and stores the exact bytes both sides, so
// the CID refers to one canonical serialization
func (s *Svc) StoreMetadata(ctx context.Context, doc any, name string) (domain.StoredObject, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return domain.StoredObject{}, perr.Wrap(err, perr.ErrorCodeMetadataFormat, "storage: metadata encode failed")
	}

	localCID, localErr := s.putLocal(content)

	res, err := s.remote.PinJSON(ctx, content, pinata.PinMeta{Name: pinName(name)})
	if err != nil {
		if localErr != nil {
			return domain.StoredObject{}, perr.Wrap(err, perr.ErrorCodeStorageUnavailable, "storage: both stores rejected the write")
		}
		return domain.StoredObject{}, err
	}

	s.checkMirror(localCID, res.IpfsHash)

	return domain.StoredObject{
		CID:        res.IpfsHash,
		LocalCID:   localCID,
		Size:       int64(len(content)),
		GatewayURL: s.remote.GatewayURL(res.IpfsHash),
	}, nil
}

// Retrieve reads content by CID: bounded local attempts with linear backoff,
// then one remote gateway attempt. When both sides fail the error carries
// the local cause, since local health is what the operator can fix
func (s *Svc) Retrieve(ctx context.Context, cidStr string) ([]byte, error) {
	id, parseErr := cas.Parse(cidStr)

	var localErr error
	if parseErr != nil {
		// an id the local store cannot even parse may still be a valid
		// remote pin (e.g. CIDv0); skip straight to the gateway
		localErr = parseErr
	} else {
		for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
			data, err := s.getLocal(ctx, id)
			if err == nil {
				return data, nil
			}
			localErr = err
			if ctx.Err() != nil {
				break
			}
			if attempt < s.retry.MaxAttempts {
				s.sleep(time.Duration(attempt) * s.retry.Backoff)
			}
		}
		s.log.Debug().
			Str("cid", cidStr).
			Err(localErr).
			Msg("local retrieval exhausted; trying gateway")
	}

	data, remoteErr := s.remote.Fetch(ctx, cidStr)
	if remoteErr == nil {
		s.warmLocal(cidStr, data)
		return data, nil
	}

	s.log.Error().
		Str("cid", cidStr).
		AnErr("local", localErr).
		AnErr("remote", remoteErr).
		Msg("content unavailable on both stores")
	return nil, perr.Wrapf(localErr, perr.ErrorCodeStorageUnavailable, "storage: content %s unavailable", cidStr)
}

// RetrieveMetadata reads and decodes a metadata document
func (s *Svc) RetrieveMetadata(ctx context.Context, cidStr string, out any) error {
	data, err := s.Retrieve(ctx, cidStr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeMetadataFormat, "storage: metadata %s is not valid", cidStr)
	}
	return nil
}

// Exists reports whether the CID is retrievable from either side
func (s *Svc) Exists(ctx context.Context, cidStr string) (bool, error) {
	if id, err := cas.Parse(cidStr); err == nil && s.local.Has(id) {
		return true, nil
	}
	return s.remote.Head(ctx, cidStr)
}

// GatewayURL returns the public URL for a CID
func (s *Svc) GatewayURL(cidStr string) string { return s.remote.GatewayURL(cidStr) }

// getLocal bounds one local read with the per-attempt timeout. The store
// API is synchronous, so the read runs aside and the bound is enforced by
// select
func (s *Svc) getLocal(ctx context.Context, id cid.Cid) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.retry.AttemptTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := s.local.Get(id)
		ch <- result{data, err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-attemptCtx.Done():
		return nil, perr.Wrap(attemptCtx.Err(), perr.ErrorCodeUnavailable, "storage: local read timed out")
	}
}

// putLocal mirrors a write into the local store; failure is non-fatal for
// callers as long as the pin lands
func (s *Svc) putLocal(data []byte) (string, error) {
	id, err := s.local.Put(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("local write failed; continuing on the pinning service")
		return "", err
	}
	return id.String(), nil
}

// checkMirror logs a divergence between the two stores' identifiers
func (s *Svc) checkMirror(localCID, remoteCID string) {
	if localCID == "" || localCID == remoteCID {
		return
	}
	s.log.Warn().
		Str("local_cid", localCID).
		Str("remote_cid", remoteCID).
		Msg("cid mismatch between local store and pinning service; remote wins")
}

// warmLocal backfills the local store after a gateway hit; best effort
func (s *Svc) warmLocal(cidStr string, data []byte) {
	id, err := s.local.Put(data)
	if err != nil {
		s.log.Warn().Str("cid", cidStr).Err(err).Msg("local backfill failed")
		return
	}
	if id.String() != cidStr {
		// remote-addressed content (different codec or hash); the local copy
		// still exists under its own id, nothing more to do here
		s.log.Debug().Str("remote_cid", cidStr).Str("local_cid", id.String()).Msg("backfilled under local cid")
	}
}

func pinName(name string) string {
	if name == "" {
		return "ablo-" + uuid.NewString()
	}
	return name
}
