package kernel

import (
	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
)

// readScalar casts whatever numeric dtype depth carries to f32.
func readScalar(t *core.Tensor, idx int64) float32 {
	switch t.DType {
	case core.Float32:
		return t.Float32At(idx)
	case core.Int32:
		return float32(t.Int32At(idx))
	case core.Int64:
		return float32(t.Int64At(idx))
	default:
		panic("kernel: unsupported numeric dtype for depth input")
	}
}

// Unproject scales the raw depth sample at every pixel, clips it to zero
// past depthMax, and unprojects it to a camera-space vertex. depth must be
// an H x W tensor (Tensor.Shape = {H, W}).
//
// Invariant: d == 0 => vertex == (0,0,0).
func Unproject(depth *core.Tensor, intrinsics [3][3]float32, depthScale, depthMax float32) *core.Tensor {
	h := depth.Shape[0]
	w := depth.Shape[1]
	vertexMap := core.NewTensor([]int64{h, w, 3}, core.Float32)

	tx := core.NewTransformIndexer(intrinsics, [4][4]float32{}, 0)
	imgIndexer := core.NewNDArrayIndexer([]int64{w, h}, depth.DType.Size())

	device.ParallelFor(int(h*w), func(workloadIdx int) {
		coord := make([]int64, 2)
		imgIndexer.WorkloadToCoord(int64(workloadIdx), coord)
		x, y := coord[0], coord[1]

		pixelIdx := y*w + x
		d := readScalar(depth, pixelIdx) / depthScale
		if d >= depthMax {
			d = 0
		}

		xc, yc, zc := tx.Unproject(float32(x), float32(y), d)
		out := pixelIdx * 3
		vertexMap.SetFloat32At(out, xc)
		vertexMap.SetFloat32At(out+1, yc)
		vertexMap.SetFloat32At(out+2, zc)
	})

	return vertexMap
}
