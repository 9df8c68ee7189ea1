package device

import "github.com/gekko3d/voxelfusion/core"

// BlockPool is the contiguous buffer of voxel blocks: Values is a
// [B,R,R,R,2]f32 tensor (tsdf, weight per voxel), Keys is a [B,3]i64 tensor
// of block coordinates. Real deployments have an external hash map own this
// allocation; this type is the concrete backing store a Go process actually
// has to allocate, modeled on a brick-pool buffer lifecycle (allocate,
// track used/capacity, reset) but growable instead of fixed-size, since
// there is no GPU buffer to pre-size against.
type BlockPool struct {
	Resolution int64
	Values     *core.Tensor
	Keys       *core.Tensor
	Used       int64
	Capacity   int64
}

// NewBlockPool allocates an empty pool with room for initialCapacity
// blocks at the given resolution.
func NewBlockPool(resolution, initialCapacity int64) *BlockPool {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	p := &BlockPool{Resolution: resolution}
	p.alloc(initialCapacity)
	return p
}

func (p *BlockPool) alloc(capacity int64) {
	r := p.Resolution
	p.Values = core.NewTensor([]int64{capacity, r, r, r, 2}, core.Float32)
	p.Keys = core.NewTensor([]int64{capacity, 3}, core.Int64)
	p.Capacity = capacity
}

// EnsureCapacity grows the pool to at least n blocks, doubling like a Go
// slice append, and preserves existing block data and keys.
func (p *BlockPool) EnsureCapacity(n int64) {
	if n <= p.Capacity {
		return
	}
	newCap := p.Capacity
	for newCap < n {
		newCap *= 2
	}
	old := *p
	p.alloc(newCap)
	copy(p.Values.Data, old.Values.Data)
	copy(p.Keys.Data, old.Keys.Data)
}

// SetKey records block addr's coordinate key.
func (p *BlockPool) SetKey(addr int64, xb, yb, zb int64) {
	base := addr * 3
	p.Keys.SetInt64At(base, xb)
	p.Keys.SetInt64At(base+1, yb)
	p.Keys.SetInt64At(base+2, zb)
}

// Key reads back block addr's coordinate key.
func (p *BlockPool) Key(addr int64) (xb, yb, zb int64) {
	base := addr * 3
	return p.Keys.Int64At(base), p.Keys.Int64At(base + 1), p.Keys.Int64At(base + 2)
}

// Reset zeroes the used counter and all voxel data, keeping the current
// capacity.
func (p *BlockPool) Reset() {
	p.Used = 0
	for i := range p.Values.Data {
		p.Values.Data[i] = 0
	}
}

// Stats reports the pool's occupancy, for callers sizing a subsequent
// Touch/Activate call.
func (p *BlockPool) Stats() (used, capacity int64) {
	return p.Used, p.Capacity
}
