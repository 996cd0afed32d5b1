package matching

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	_ "image/jpeg"
	_ "image/png"
)

// Embedding model input shape.
const (
	inputHeight   = 224
	inputWidth    = 224
	inputChannels = 3
)

// Tensor holds a single preprocessed image in NHWC layout with batch size 1.
// Tensors come from a shared pool; callers must hand them back via ReleaseTensor
// once the embedding has been computed.
type Tensor struct {
	data [][][][]float32
}

// Data exposes the raw NHWC buffer for the inference client.
func (t *Tensor) Data() [][][][]float32 {
	return t.data
}

var tensorPool = sync.Pool{
	New: func() any {
		data := make([][][][]float32, 1)
		data[0] = make([][][]float32, inputHeight)
		for y := 0; y < inputHeight; y++ {
			data[0][y] = make([][]float32, inputWidth)
			for x := 0; x < inputWidth; x++ {
				data[0][y][x] = make([]float32, inputChannels)
			}
		}
		return &Tensor{data: data}
	},
}

// ReleaseTensor returns a tensor to the pool. Safe on nil.
func ReleaseTensor(t *Tensor) {
	if t == nil {
		return
	}
	tensorPool.Put(t)
}

// Preprocess decodes jpeg or png bytes and resizes them to the model input
// shape with nearest-neighbor sampling. The returned tensor is pooled.
func Preprocess(raw []byte) (*Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	t := tensorPool.Get().(*Tensor)
	pixels := t.data[0]

	for y := 0; y < inputHeight; y++ {
		srcY := bounds.Min.Y + y*srcH/inputHeight
		for x := 0; x < inputWidth; x++ {
			srcX := bounds.Min.X + x*srcW/inputWidth
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			// RGBA returns 16-bit channels; scale down to 0-255.
			pixels[y][x][0] = float32(r >> 8)
			pixels[y][x][1] = float32(g >> 8)
			pixels[y][x][2] = float32(b >> 8)
		}
	}

	return t, nil
}
