package filter

import (
	"math"

	"github.com/gogpu/tvg/internal/cache"
)

// Radius returns how far a Gaussian of sigma reaches: ceil(3 * sigma)
// pixels, which covers 99.7% of the distribution.
func Radius(sigma float32) int {
	if sigma <= 0 {
		return 0
	}
	return int(math.Ceil(float64(sigma) * 3))
}

// GaussianKernel returns a 1D Gaussian kernel of 2*Radius(sigma)+1 taps
// summing to 1. A sigma <= 0 yields the identity kernel.
func GaussianKernel(sigma float32) []float32 {
	half := Radius(sigma)
	if half == 0 {
		return []float32{1}
	}
	k := make([]float32, 2*half+1)
	twoSigmaSq := 2 * float64(sigma) * float64(sigma)
	var sum float64
	for i := range k {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		k[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range k {
		k[i] *= inv
	}
	return k
}

const kernelCacheSize = 64

// kernels holds kernels by sigma quantized to 1/100 pixel.
var kernels = cache.New[int32, []float32](kernelCacheSize)

// cachedKernel returns a shared kernel for sigma. It must not be modified.
func cachedKernel(sigma float32) []float32 {
	key := int32(math.Round(float64(sigma) * 100))
	return kernels.GetOrCreate(key, func() []float32 {
		return GaussianKernel(float32(key) / 100)
	})
}
