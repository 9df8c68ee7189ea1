package kernel

import (
	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
)

// unitAxis are the +x/+y/+z unit vectors used to offset a world voxel
// coordinate into the metric position of a zero-crossing point.
var unitAxis = [3][3]float32{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// SurfaceExtraction walks, for every allocated voxel, its +x/+y/+z
// neighbor (which may live in an adjacent block) and emits a
// zero-crossing point wherever the TSDF sign flips between two
// positively-weighted voxels.
//
// indices selects which blocks (by pool address) to scan; nbIndices[nb][k]
// and nbMasks[nb][k] give, for selection k, the pool address and
// allocation state of neighbor nb. Returns a tensor sliced down to however
// many points were actually emitted — never more than capacity rows, with
// excess emissions silently dropped.
func SurfaceExtraction(
	indices []int64,
	nbIndices [27][]int64,
	nbMasks [27][]bool,
	blockKeys *core.Tensor,
	blockValues *core.Tensor,
	voxelSize float32,
	resolution int64,
	capacity int64,
) *core.Tensor {
	k := int64(len(indices))
	r := resolution
	r3 := r * r * r
	n := k * r3

	voxIndexer := core.NewNDArrayIndexer([]int64{r, r, r}, 4)
	points := core.NewTensor([]int64{capacity, 3}, core.Float32)
	var count device.AtomicCounter

	device.ParallelFor(int(n), func(workloadIdx int) {
		w64 := int64(workloadIdx)
		ki := w64 / r3
		voxelIdx := w64 % r3
		blockIdx := indices[ki]

		originElem := (voxelIdx + blockIdx*r3) * 2
		tsdfO := blockValues.Float32At(originElem)
		weightO := blockValues.Float32At(originElem + 1)
		if weightO == 0 {
			return
		}

		coord := make([]int64, 3)
		voxIndexer.WorkloadToCoord(voxelIdx, coord)
		xv, yv, zv := coord[0], coord[1], coord[2]

		keyBase := blockIdx * 3
		xb := blockKeys.Int64At(keyBase)
		yb := blockKeys.Int64At(keyBase + 1)
		zb := blockKeys.Int64At(keyBase + 2)
		worldX := xb*r + xv
		worldY := yb*r + yv
		worldZ := zb*r + zv

		for axis := 0; axis < 3; axis++ {
			sx, sy, sz := worldX, worldY, worldZ
			switch axis {
			case 0:
				sx++
			case 1:
				sy++
			case 2:
				sz++
			}

			nb, lx, ly, lz := locateVoxel(r, sx, sy, sz)
			if !nbMasks[nb][ki] {
				continue
			}
			neighborBlock := nbIndices[nb][ki]
			neighborVoxelIdx := voxIndexer.CoordToWorkload([]int64{lx, ly, lz})
			neighborElem := (neighborVoxelIdx + neighborBlock*r3) * 2
			tsdfI := blockValues.Float32At(neighborElem)
			weightI := blockValues.Float32At(neighborElem + 1)
			if weightI <= 0 || tsdfI*tsdfO >= 0 {
				continue
			}

			ratio := tsdfI / (tsdfI - tsdfO)
			slot := count.FetchAdd(1)
			if int64(slot) >= capacity {
				return
			}
			px := voxelSize * (float32(worldX) + ratio*unitAxis[axis][0])
			py := voxelSize * (float32(worldY) + ratio*unitAxis[axis][1])
			pz := voxelSize * (float32(worldZ) + ratio*unitAxis[axis][2])
			base := int64(slot) * 3
			points.SetFloat32At(base, px)
			points.SetFloat32At(base+1, py)
			points.SetFloat32At(base+2, pz)
		}
	})

	realized := int64(count.Load())
	if realized > capacity {
		realized = capacity
	}
	return sliceRows(points, realized, 3)
}

// sliceRows returns a new tensor containing the first n rows of width cols
// from t, trimming an output buffer down to the count actually realized.
func sliceRows(t *core.Tensor, n, cols int64) *core.Tensor {
	out := core.NewTensor([]int64{n, cols}, t.DType)
	elemSize := t.DType.Size()
	copy(out.Data, t.Data[:n*cols*elemSize])
	return out
}
