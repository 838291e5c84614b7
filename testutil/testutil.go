package testutil

import (
	"math/rand"
	"sync"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/internal/resource"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int64s returns n values in [lo, hi).
// Locks only once per call.
func (r *RNG) Int64s(n int, lo, hi int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, n)
	for i := range out {
		out[i] = lo + r.rand.Int63n(hi-lo)
	}
	return out
}

// Float64s returns n values in [0, 1).
func (r *RNG) Float64s(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, n)
	for i := range out {
		out[i] = r.rand.Float64()
	}
	return out
}

// Validity returns n flags, each false with probability nullFraction.
func (r *RNG) Validity(n int, nullFraction float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, n)
	for i := range out {
		out[i] = r.rand.Float64() >= nullFraction
	}
	return out
}

// Perm returns a random permutation of [0, n) as int32 row indices.
func (r *RNG) Perm(n int) []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, n)
	for i, v := range r.rand.Perm(n) {
		out[i] = int32(v)
	}
	return out
}

// NewDevice returns a device with a private resource controller whose
// collection hook is disabled, so memory usage only changes on explicit
// allocation and release.
func NewDevice(opts ...device.Option) (*device.Device, *resource.Controller) {
	rc := resource.NewController(resource.Config{GCThresholdBytes: -1})
	base := []device.Option{device.WithResourceController(rc)}
	return device.New(append(base, opts...)...), rc
}
