// Package cas implements the local content-addressable backend.
// Objects are immutable, keyed strictly by CID, and written once.
package cas

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	perr "ablo/internal/platform/errors"
)

// Store is the minimal content-addressable storage contract.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Sentinels surfaced by Store implementations
var (
	// ErrNotFound means the CID has no object in this store
	ErrNotFound = perr.New(perr.ErrorCodeNotFound, "cas: object not found")

	// ErrImmutable means an existing object would be overwritten with different bytes
	ErrImmutable = perr.Internalf("cas: object exists with different content")

	// ErrMismatch means a stored object no longer hashes to its CID
	ErrMismatch = perr.Internalf("cas: stored content does not match cid")

	// ErrInvalidCID means the caller supplied an undefined or unparseable CID
	ErrInvalidCID = perr.InvalidArgf("cas: invalid cid")
)

// CIDFor returns a CIDv1 using the "raw" multicodec and a sha2-256 multihash.
func CIDFor(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CIDStringFor is CIDFor for callers that only need the string form.
// multihash.Sum cannot fail for SHA2_256 with default length, so this
// returns "" only on unreachable input
func CIDStringFor(data []byte) string {
	id, err := CIDFor(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// Parse decodes a CID string, mapping failures to ErrInvalidCID
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Parse(s)
	if err != nil {
		return cid.Undef, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "cas: invalid cid")
	}
	return id, nil
}
