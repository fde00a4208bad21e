package search

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"go.mongodb.org/mongo-driver/bson"
)

// magic prefixes every blob so foreign bytes are rejected before decompression.
var magic = []byte("HYIX")

// EncodeAll and DecodeAll are safe for concurrent use on shared coders.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

type payload struct {
	Version     int      `bson:"v"`
	DocumentID  string   `bson:"d"`
	Fingerprint string   `bson:"f"`
	SkipDeleted bool     `bson:"sd"`
	Records     []Record `bson:"r"`
}

// Encode serializes idx into an opaque blob for an external store.
func Encode(idx *Index) ([]byte, error) {
	raw, err := bson.Marshal(payload{
		Version:     idx.version,
		DocumentID:  idx.documentID,
		Fingerprint: idx.fingerprint,
		SkipDeleted: idx.skipDeleted,
		Records:     idx.records,
	})
	if err != nil {
		return nil, fmt.Errorf("search: encode index: %w", err)
	}
	out := make([]byte, 0, len(magic)+len(raw)/2)
	out = append(out, magic...)
	return encoder.EncodeAll(raw, out), nil
}

// Decode reconstructs an index from a blob produced by Encode without needing
// the source document. It returns ErrIndexVersion when the blob was written by
// another format version and ErrCorruptIndex for anything unreadable.
func Decode(blob []byte) (*Index, error) {
	if !bytes.HasPrefix(blob, magic) {
		return nil, ErrCorruptIndex
	}
	raw, err := decoder.DecodeAll(blob[len(magic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	var p payload
	if err := bson.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if p.Version != IndexVersion {
		return nil, fmt.Errorf("%w: blob v%d, want v%d", ErrIndexVersion, p.Version, IndexVersion)
	}
	return newIndex(p.Version, p.DocumentID, p.Fingerprint, p.SkipDeleted, p.Records), nil
}
