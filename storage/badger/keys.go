package badger

import (
	"encoding/binary"

	"github.com/poiesic/pathway/core"
)

// Key prefixes for different data types
const (
	catalogOrderPrefix = "catord:"
	catalogIDPrefix    = "catidx:"
	catalogSeq         = "catseq"
	embeddingPrefix    = "embvec:"
	manifestKey        = "idxmanifest"
)

// makeCatalogOrderKey generates the primary key of a catalog item.
// Format: prefix + seq, BigEndian so lexicographic order is load order.
func makeCatalogOrderKey(seq uint64) []byte {
	buf := make([]byte, len(catalogOrderPrefix)+8)
	offset := copy(buf, catalogOrderPrefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeCatalogIDKey generates the lookup key mapping an item ID to its sequence.
// Format: prefix + id
func makeCatalogIDKey(id string) []byte {
	buf := make([]byte, len(catalogIDPrefix)+len(id))
	offset := copy(buf, catalogIDPrefix)
	copy(buf[offset:], id)
	return buf
}

// makeEmbeddingPrefix generates the partial key of every vector for a model.
// Format: prefix + model + ":"
func makeEmbeddingPrefix(model string) []byte {
	buf := make([]byte, len(embeddingPrefix)+len(model)+1)
	offset := copy(buf, embeddingPrefix)
	offset += copy(buf[offset:], model)
	buf[offset] = ':'
	return buf
}

// makeEmbeddingKey generates the key of a cached vector.
// Format: prefix + model + ":" + contentID
func makeEmbeddingKey(model string, id core.ID) []byte {
	prefix := makeEmbeddingPrefix(model)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

func decodeSeq(val []byte) uint64 {
	return binary.BigEndian.Uint64(val)
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
