package cas

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"ablo/internal/platform/logger"
)

// FS is a local filesystem-backed content-addressable store.
//
// Layout is <root>/<first two cid chars>/<cid> with read-only object files.
// Writes are create-exclusive: two writers storing identical bytes converge
// on the identical CID, so a lost race is success; different bytes under the
// same path is an immutability violation.
type FS struct {
	root string
	log  logger.Logger
}

// NewFS constructs a filesystem store rooted at root. The directory will be created if needed.
func NewFS(root string) (*FS, error) {
	if root == "" {
		return nil, ErrInvalidCID
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FS{root: root, log: *logger.Named("cas")}, nil
}

// Root returns the backing directory
func (f *FS) Root() string { return f.root }

// Put writes data under its derived CID and returns that CID
func (f *FS) Put(data []byte) (cid.Cid, error) {
	id, err := CIDFor(data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}

	path := f.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := f.Get(id)
			if rerr != nil {
				// exists but unreadable or corrupted: treat as an immutability violation
				return cid.Undef, ErrImmutable
			}
			if !bytes.Equal(existing, data) {
				return cid.Undef, ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}

	f.log.Debug().Str("cid", id.String()).Int("bytes", len(data)).Msg("object stored")
	return id, nil
}

// Get reads the object for id, verifying the content still hashes to id
func (f *FS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	b, err := os.ReadFile(f.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	got, err := CIDFor(b)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, ErrMismatch
	}
	return b, nil
}

// Has reports whether an object file exists for id (stat only, no digest check)
func (f *FS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(f.pathFor(id))
	return err == nil
}

func (f *FS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(f.root, s)
	}
	return filepath.Join(f.root, s[:2], s)
}
