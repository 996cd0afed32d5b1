package matching

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Embedder produces a fixed-length vector for a preprocessed image tensor.
// The embedding model is opaque; anything returning a normalizable vector works.
type Embedder interface {
	Infer(ctx context.Context, tensor [][][][]float32) ([]float32, error)
}

// FileStore is the slice of the upload store the extractor needs.
type FileStore interface {
	Read(relPath string) ([]byte, error)
}

// Fingerprint carries the two per-image signals used by the scorer. It is
// recomputed on every matching request and never persisted.
type Fingerprint struct {
	ContentHash [md5.Size]byte
	Embedding   *mat.VecDense
}

// Extractor turns a stored image path into a fingerprint.
type Extractor struct {
	files    FileStore
	embedder Embedder
}

// NewExtractor builds an extractor over the given file store and embedder.
func NewExtractor(files FileStore, embedder Embedder) *Extractor {
	return &Extractor{files: files, embedder: embedder}
}

// Extract reads the image, hashes its raw bytes, and computes an embedding.
// A read failure yields no fingerprint. Decode and inference failures still
// yield the content hash, so byte-identical duplicates keep matching even when
// the model is struggling.
func (e *Extractor) Extract(ctx context.Context, imagePath string) (*Fingerprint, error) {
	raw, err := e.files.Read(strings.TrimPrefix(imagePath, "/"))
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", imagePath, err)
	}

	fp := &Fingerprint{ContentHash: md5.Sum(raw)}

	tensor, err := Preprocess(raw)
	if err != nil {
		return fp, fmt.Errorf("preprocessing %s: %w", imagePath, err)
	}
	defer ReleaseTensor(tensor)

	vector, err := e.embedder.Infer(ctx, tensor.Data())
	if err != nil {
		return fp, fmt.Errorf("embedding %s: %w", imagePath, err)
	}
	if len(vector) == 0 {
		return fp, fmt.Errorf("embedding %s: model returned empty vector", imagePath)
	}

	embedding := mat.NewVecDense(len(vector), nil)
	for i, v := range vector {
		embedding.SetVec(i, float64(v))
	}
	fp.Embedding = embedding

	return fp, nil
}
