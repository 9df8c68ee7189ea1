package kernel

import (
	"math"

	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
	"github.com/gekko3d/voxelfusion/hashmap"
)

// Activator is the subset of hashmap.SpatialHashMap's surface Touch needs:
// a hash map with an Activate(keys) -> (addresses, masks) operation.
type Activator interface {
	Activate(keys []hashmap.Key) (addrs []int64, masks []bool)
}

// Touch converts a point cloud into the set of block keys that need
// allocating, dilated by the full 27-neighborhood so Integrate and the
// extraction kernels can always reach ±1 block around any observed voxel.
// transient is used only to dedupe and to honor a capacity limit on the
// number of distinct blocks touched in one call; the pre-dilation keys stay
// activated in it afterwards.
//
// Returns a [27*M, 3] int64 tensor, where M is the number of distinct,
// successfully activated block keys — not the full 27*N worst-case
// capacity.
func Touch(points *core.Tensor, voxelSize float32, resolution int64, transient Activator) *core.Tensor {
	n := points.Shape[0]
	blockSize := voxelSize * float32(resolution)

	seen := make(map[hashmap.Key]bool, n)
	uniqueKeys := make([]hashmap.Key, 0, n)
	for i := int64(0); i < n; i++ {
		base := i * 3
		x := readScalar(points, base)
		y := readScalar(points, base+1)
		z := readScalar(points, base+2)
		k := hashmap.Key{
			floorInt64(x, blockSize),
			floorInt64(y, blockSize),
			floorInt64(z, blockSize),
		}
		if !seen[k] {
			seen[k] = true
			uniqueKeys = append(uniqueKeys, k)
		}
	}

	_, masks := transient.Activate(uniqueKeys)
	kept := make([]hashmap.Key, 0, len(uniqueKeys))
	for i, k := range uniqueKeys {
		if masks[i] {
			kept = append(kept, k)
		}
	}

	m := int64(len(kept))
	out := core.NewTensor([]int64{27 * m, 3}, core.Int64)
	device.ParallelFor(int(m), func(i int) {
		k := kept[i]
		for nb := 0; nb < 27; nb++ {
			dx, dy, dz := NeighborOffsetOf(nb)
			row := int64(i)*27 + int64(nb)
			base := row * 3
			out.SetInt64At(base, k[0]+dx)
			out.SetInt64At(base+1, k[1]+dy)
			out.SetInt64At(base+2, k[2]+dz)
		}
	})
	return out
}

func floorInt64(v, scale float32) int64 {
	return int64(math.Floor(float64(v / scale)))
}
