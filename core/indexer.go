package core

// NDArrayIndexer maps between a linear workload id and coordinates, and
// between coordinates and a byte offset into a Tensor's Data, for a shape of
// up to 4 dimensions.
//
// Shape is stored innermost-axis-first: Shape[0] is the fastest-varying
// dimension. For the voxel block buffer this gives Shape = {R, R, R, B}
// for coordinates (x_voxel, y_voxel, z_voxel, block_idx) — block_idx is
// Shape[3], the outermost axis. For an H×W depth image, Shape = {W, H} so
// that x (column, u) is innermost and y (row, v) is outermost, matching
// depth[y][x] row-major storage.
type NDArrayIndexer struct {
	Shape        [4]int64
	NDims        int
	ElemByteSize int64
}

// NewNDArrayIndexer builds an indexer over shape (innermost axis first, see
// type doc) where elements are elemByteSize bytes wide. len(shape) must be
// between 1 and 4.
func NewNDArrayIndexer(shape []int64, elemByteSize int64) *NDArrayIndexer {
	if len(shape) == 0 || len(shape) > 4 {
		panic("core: NDArrayIndexer supports 1 to 4 dims")
	}
	ix := &NDArrayIndexer{NDims: len(shape), ElemByteSize: elemByteSize}
	copy(ix.Shape[:], shape)
	return ix
}

// NumElements is the product of Shape over NDims.
func (ix *NDArrayIndexer) NumElements() int64 {
	n := int64(1)
	for i := 0; i < ix.NDims; i++ {
		n *= ix.Shape[i]
	}
	return n
}

// WorkloadToCoord decomposes w into NDims coordinates, innermost axis
// fastest. coord must have length >= NDims; coord[0] is the innermost
// coordinate. Undefined for w outside [0, NumElements()) — callers check
// bounds themselves.
func (ix *NDArrayIndexer) WorkloadToCoord(w int64, coord []int64) {
	for i := 0; i < ix.NDims; i++ {
		coord[i] = w % ix.Shape[i]
		w /= ix.Shape[i]
	}
}

// CoordToWorkload is the inverse of WorkloadToCoord.
func (ix *NDArrayIndexer) CoordToWorkload(coord []int64) int64 {
	var w int64
	for i := ix.NDims - 1; i >= 0; i-- {
		w = w*ix.Shape[i] + coord[i]
	}
	return w
}

// GetDataPtrFromWorkload returns the byte offset of workload w's element
// within a backing Tensor's Data.
func (ix *NDArrayIndexer) GetDataPtrFromWorkload(w int64) int64 {
	return w * ix.ElemByteSize
}

// InBoundary reports whether the truncated-to-integer (u, v) falls inside
// a 2-D indexer's [0,W) x [0,H) domain. W is Shape[0] (innermost), H is
// Shape[1].
func (ix *NDArrayIndexer) InBoundary(u, v float32) bool {
	iu, iv := int64(u), int64(v)
	return iu >= 0 && iu < ix.Shape[0] && iv >= 0 && iv < ix.Shape[1]
}
