package core

import "github.com/go-gl/mathgl/mgl32"

// TransformIndexer bundles pinhole intrinsics and a rigid extrinsics
// transform. VoxelSize is the voxel-to-metric scale; when
// non-zero, RigidTransform treats its input as voxel coordinates and scales
// them to metric units before applying Extrinsics. A VoxelSize of 0 means
// inputs are already metric (used by the Unproject kernel, which has no
// notion of voxels).
type TransformIndexer struct {
	Fx, Fy, Cx, Cy float32
	Extrinsics     mgl32.Mat4 // world -> camera, 4x4 rigid transform
	VoxelSize      float32
}

// NewTransformIndexer builds a TransformIndexer from a 3x3 row-major
// intrinsics matrix and a 4x4 row-major extrinsics matrix.
func NewTransformIndexer(intrinsics [3][3]float32, extrinsics [4][4]float32, voxelSize float32) *TransformIndexer {
	return &TransformIndexer{
		Fx:         intrinsics[0][0],
		Fy:         intrinsics[1][1],
		Cx:         intrinsics[0][2],
		Cy:         intrinsics[1][2],
		Extrinsics: Mat4FromRowMajor(extrinsics),
		VoxelSize:  voxelSize,
	}
}

// Mat4FromRowMajor builds an mgl32.Mat4 from a row-major 4x4 array, i.e.
// rows[i][j] is row i, column j.
func Mat4FromRowMajor(rows [4][4]float32) mgl32.Mat4 {
	return mgl32.Mat4FromRows(
		mgl32.Vec4{rows[0][0], rows[0][1], rows[0][2], rows[0][3]},
		mgl32.Vec4{rows[1][0], rows[1][1], rows[1][2], rows[1][3]},
		mgl32.Vec4{rows[2][0], rows[2][1], rows[2][2], rows[2][3]},
		mgl32.Vec4{rows[3][0], rows[3][1], rows[3][2], rows[3][3]},
	)
}

// RigidTransform applies Extrinsics to (x,y,z), scaling by VoxelSize first
// when the indexer was built for voxel-unit input.
func (tx *TransformIndexer) RigidTransform(x, y, z float32) (xc, yc, zc float32) {
	if tx.VoxelSize != 0 {
		x *= tx.VoxelSize
		y *= tx.VoxelSize
		z *= tx.VoxelSize
	}
	r := tx.Extrinsics.Mul4x1(mgl32.Vec4{x, y, z, 1})
	return r.X(), r.Y(), r.Z()
}

// Project applies the pinhole projection. Undefined for zc <= 0; callers
// must check before trusting the result.
func (tx *TransformIndexer) Project(xc, yc, zc float32) (u, v float32) {
	u = tx.Fx*xc/zc + tx.Cx
	v = tx.Fy*yc/zc + tx.Cy
	return u, v
}

// Unproject inverts the pinhole projection given a depth sample d.
func (tx *TransformIndexer) Unproject(x, y, d float32) (xc, yc, zc float32) {
	xc = (x - tx.Cx) * d / tx.Fx
	yc = (y - tx.Cy) * d / tx.Fy
	zc = d
	return xc, yc, zc
}
