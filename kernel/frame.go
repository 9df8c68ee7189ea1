package kernel

import (
	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
	"github.com/gekko3d/voxelfusion/hashmap"
)

// Frame bundles one depth observation with the camera parameters it was
// captured under, so a caller doesn't have to thread them through by hand.
type Frame struct {
	Depth      *core.Tensor
	Intrinsics [3][3]float32
	Extrinsics [4][4]float32
	DepthScale float32
	DepthMax   float32
}

// FuseFrame runs Unproject -> Touch -> Integrate for one Frame against
// blocks, growing pool to fit whatever addresses blocks.Activate hands
// back, and returns the distinct block ids touched (already dilated by the 27
// neighborhood, suitable as the indices argument to Integrate or a
// subsequent SurfaceExtraction/MarchingCubes call).
//
// This is a convenience wrapper, not a standalone kernel: nothing here
// Dispatcher.Execute can't already do as three separate calls.
func FuseFrame(
	frame Frame,
	voxelSize float32,
	sdfTrunc float32,
	resolution int64,
	blocks *hashmap.SpatialHashMap,
	pool *device.BlockPool,
) (touchedBlocks []int64) {
	vertexMap := Unproject(frame.Depth, frame.Intrinsics, frame.DepthScale, frame.DepthMax)
	blockCoords := Touch(vertexMap3D(vertexMap), voxelSize, resolution, blocks)

	n := blockCoords.Shape[0]
	keys := make([]hashmap.Key, n)
	for i := int64(0); i < n; i++ {
		base := i * 3
		keys[i] = hashmap.Key{
			blockCoords.Int64At(base),
			blockCoords.Int64At(base + 1),
			blockCoords.Int64At(base + 2),
		}
	}
	addrs, masks := blocks.Activate(keys)

	// Touch's 27-neighborhood dilation routinely realizes far more distinct
	// blocks than the pre-dilation point set; blocks.Activate hands out
	// addresses from an unbounded counter, so pool must grow to match
	// before anything is written into it.
	maxAddr := int64(-1)
	for i, ok := range masks {
		if ok && addrs[i] > maxAddr {
			maxAddr = addrs[i]
		}
	}
	if maxAddr >= 0 {
		pool.EnsureCapacity(maxAddr + 1)
	}

	// Overlapping dilations repeat keys; each block id is kept once so
	// Integrate never sees a duplicate index.
	seen := make(map[int64]bool, len(masks))
	for i, ok := range masks {
		if !ok || seen[addrs[i]] {
			continue
		}
		seen[addrs[i]] = true
		xb, yb, zb := keys[i][0], keys[i][1], keys[i][2]
		pool.SetKey(addrs[i], xb, yb, zb)
		touchedBlocks = append(touchedBlocks, addrs[i])
	}

	Integrate(frame.Depth, touchedBlocks, pool.Keys, pool.Values,
		frame.Intrinsics, frame.Extrinsics, resolution, voxelSize, sdfTrunc, frame.DepthScale)
	pool.Used = int64(blocks.Len())
	return touchedBlocks
}

// vertexMap3D flattens Unproject's [h,w,3] vertex map into the [n,3] point
// list Touch expects, dropping pixels that unprojected to the origin
// (invalid depth always unprojects to vertex (0,0,0)).
func vertexMap3D(vertexMap *core.Tensor) *core.Tensor {
	h, w := vertexMap.Shape[0], vertexMap.Shape[1]
	n := h * w
	kept := make([]float32, 0, n*3)
	for i := int64(0); i < n; i++ {
		base := i * 3
		x := vertexMap.Float32At(base)
		y := vertexMap.Float32At(base + 1)
		z := vertexMap.Float32At(base + 2)
		if x == 0 && y == 0 && z == 0 {
			continue
		}
		kept = append(kept, x, y, z)
	}
	rows := int64(len(kept) / 3)
	out := core.NewTensor([]int64{rows, 3}, core.Float32)
	for i, v := range kept {
		out.SetFloat32At(int64(i), v)
	}
	return out
}
