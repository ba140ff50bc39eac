// Package document stores uploaded document metadata and embedded chunks.
package document

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/studentmate/tutor/internal/db"
	"github.com/studentmate/tutor/internal/domain"
)

// store is the consumer interface for document operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo persists documents as chunk hashes (indexed for KNN) plus a JSON
// metadata record per document.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// IndexName returns the FT index covering chunk hashes.
func (r *Repo) IndexName() string {
	return r.prefix + "chunks:idx"
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.IndexName(),
		Prefixes: []string{r.prefix + "chunk:"},
		Fields: []db.IndexField{
			{Name: "owner", Type: db.IndexFieldTag},
			{Name: "content", Type: db.IndexFieldText},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorM:           32,
				VectorEFConstruct: 400,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create chunk index: %w", err)
	}
	return nil
}

// Save stores document metadata and all embedded chunks.
func (r *Repo) Save(ctx context.Context, meta domain.DocumentInfo, chunks []domain.DocumentChunk) error {
	for i, chunk := range chunks {
		key := r.chunkKey(meta.ID, i)
		fields := map[string]string{
			"owner":    meta.OwnerID,
			"doc_id":   meta.ID,
			"filename": meta.Filename,
			"content":  chunk.Text,
			"vector":   vectorToBytes(chunk.Vector),
		}
		if err := r.store.HSet(ctx, key, fields); err != nil {
			return fmt.Errorf("store chunk %d of %s: %w", i, meta.ID, err)
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal document meta: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.metaKey(meta.ID), "$", data); err != nil {
		return fmt.Errorf("store document meta %s: %w", meta.ID, err)
	}
	return nil
}

// Get returns metadata for one document.
func (r *Repo) Get(ctx context.Context, id string) (domain.DocumentInfo, error) {
	raw, err := r.store.JSONGet(ctx, r.metaKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.DocumentInfo{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return domain.DocumentInfo{}, fmt.Errorf("get document meta %s: %w", id, err)
	}
	return unmarshalMeta(raw)
}

// ListByOwner returns metadata for every document the owner uploaded.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.DocumentInfo, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"doc:*")
	if err != nil {
		return nil, fmt.Errorf("scan document metas: %w", err)
	}

	var metas []domain.DocumentInfo
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			continue // key may have been deleted between SCAN and GET
		}
		meta, err := unmarshalMeta(raw)
		if err != nil {
			continue
		}
		if meta.OwnerID == ownerID {
			metas = append(metas, meta)
		}
	}
	return metas, nil
}

// Delete removes a document's metadata and all of its chunks. The owner
// must match; a mismatch reports not found rather than leaking existence.
func (r *Repo) Delete(ctx context.Context, ownerID, id string) error {
	meta, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if meta.OwnerID != ownerID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	chunkKeys, err := r.store.Scan(ctx, r.prefix+"chunk:"+id+":*")
	if err != nil {
		return fmt.Errorf("scan chunks of %s: %w", id, err)
	}
	for _, key := range chunkKeys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete chunk %s: %w", key, err)
		}
	}

	if err := r.store.Del(ctx, r.metaKey(id)); err != nil {
		return fmt.Errorf("delete document meta %s: %w", id, err)
	}
	return nil
}

func (r *Repo) metaKey(id string) string {
	return r.prefix + "doc:" + id
}

func (r *Repo) chunkKey(id string, n int) string {
	return r.prefix + "chunk:" + id + ":" + strconv.Itoa(n)
}

func unmarshalMeta(raw []byte) (domain.DocumentInfo, error) {
	// JSON.GET with path "$" returns a single-element array.
	var list []domain.DocumentInfo
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	var meta domain.DocumentInfo
	if err := json.Unmarshal(raw, &meta); err != nil {
		return domain.DocumentInfo{}, fmt.Errorf("unmarshal document meta: %w", err)
	}
	return meta, nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
