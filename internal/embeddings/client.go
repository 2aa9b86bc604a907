package embeddings

import (
	"context"
	"encoding/binary"
	"math"
)

const (
	// Model is the fixed embedding model identifier sent with every request.
	Model = "text-embedding-3-small"

	// Dimensions is the vector length produced by Model. The ships table and
	// the vector index are both sized to it.
	Dimensions = 1536
)

// Embedder is the interface for embedding providers
type Embedder interface {
	// Embed generates an embedding for a single text string
	Embed(ctx context.Context, text string) ([]float32, error)

	// Health checks if the service is reachable and credentials are accepted
	Health(ctx context.Context) error
}

// Serialize converts a float32 vector to bytes for SQLite storage
// Uses little-endian encoding for portability
func Serialize(vec []float32) []byte {
	buf := make([]byte, len(vec)*4) // 4 bytes per float32
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Deserialize converts bytes back to a float32 vector
func Deserialize(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}

	vec := make([]float32, len(data)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}
