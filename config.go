package voxelfusion

// DefaultMaxOutputRows is the fallback cap for point/vertex output buffers
// when a caller does not size its own. Arbitrary; callers with known
// workloads should size MaxOutputRows themselves.
const DefaultMaxOutputRows = 10_000_000

// Params bundles the scalar knobs of a kernel call. Constructed with
// NewParams so a caller never has to get every field right by hand,
// returning a populated struct rather than a zero value. The kernels and
// the Dispatcher do not read a Params; callers pass its fields on as
// arguments or Dispatcher fields.
type Params struct {
	Resolution    int64 // R, voxels per block edge
	VoxelSize     float32
	SDFTrunc      float32
	DepthScale    float32
	DepthMax      float32
	MaxOutputRows int64

	// StrictCentralDifference selects the corrected Marching Cubes central
	// difference (yvs[1]/zvs[1]) instead of reusing xvs[1] for both, once
	// passed on as MarchingCubes' strictCentralDifference argument or
	// Dispatcher.StrictCentralDifference. See kernel/marching_cubes.go.
	// Defaults to false: reproduce the long-standing behavior unless a
	// caller opts into the fix.
	StrictCentralDifference bool
}

func NewParams(resolution int64, voxelSize, sdfTrunc, depthScale, depthMax float32) Params {
	return Params{
		Resolution:    resolution,
		VoxelSize:     voxelSize,
		SDFTrunc:      sdfTrunc,
		DepthScale:    depthScale,
		DepthMax:      depthMax,
		MaxOutputRows: DefaultMaxOutputRows,
	}
}

// BlockSize returns the metric size of one voxel block edge.
func (p Params) BlockSize() float32 {
	return p.VoxelSize * float32(p.Resolution)
}
