package kernel

import (
	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
)

// Integrate fuses one depth frame into the blocks named by indices,
// updating blockValues (a [B,R,R,R,2]f32 tensor: channel 0 is tsdf,
// channel 1 is weight) in place.
//
// Each workload owns a unique (block_idx, voxel_idx) cell — the
// read-modify-write is race-free without atomics as long as indices
// contains no duplicates, an invariant of the caller, not checked here.
func Integrate(
	depth *core.Tensor,
	indices []int64,
	blockKeys *core.Tensor,
	blockValues *core.Tensor,
	intrinsics [3][3]float32,
	extrinsics [4][4]float32,
	resolution int64,
	voxelSize, sdfTrunc, depthScale float32,
) {
	k := len(indices)
	r := resolution
	r3 := r * r * r
	n := int64(k) * r3

	h := depth.Shape[0]
	w := depth.Shape[1]
	imgIndexer := core.NewNDArrayIndexer([]int64{w, h}, 4)
	voxIndexer := core.NewNDArrayIndexer([]int64{r, r, r}, 4)
	tx := core.NewTransformIndexer(intrinsics, extrinsics, voxelSize)

	device.ParallelFor(int(n), func(workloadIdx int) {
		w64 := int64(workloadIdx)
		ki := w64 / r3
		voxelIdx := w64 % r3
		blockIdx := indices[ki]

		keyBase := blockIdx * 3
		xb := blockKeys.Int64At(keyBase)
		yb := blockKeys.Int64At(keyBase + 1)
		zb := blockKeys.Int64At(keyBase + 2)

		coord := make([]int64, 3)
		voxIndexer.WorkloadToCoord(voxelIdx, coord)
		xv, yv, zv := coord[0], coord[1], coord[2]

		x := xb*r + xv
		y := yb*r + yv
		z := zb*r + zv

		xc, yc, zc := tx.RigidTransform(float32(x), float32(y), float32(z))
		if zc <= 0 {
			return
		}
		u, v := tx.Project(xc, yc, zc)
		if !imgIndexer.InBoundary(u, v) {
			return
		}

		pixelIdx := int64(v)*w + int64(u)
		depthSample := readScalar(depth, pixelIdx) / depthScale
		if depthSample <= 0 {
			return
		}

		sdf := depthSample - zc
		if sdf < -sdfTrunc {
			return
		}
		if sdf > sdfTrunc {
			sdf = sdfTrunc
		}
		sdf /= sdfTrunc

		cellElem := (voxelIdx + blockIdx*r3) * 2
		tsdf := blockValues.Float32At(cellElem)
		weight := blockValues.Float32At(cellElem + 1)

		newTSDF := (weight*tsdf + sdf) / (weight + 1)
		blockValues.SetFloat32At(cellElem, newTSDF)
		blockValues.SetFloat32At(cellElem+1, weight+1)
	})
}
