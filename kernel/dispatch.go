package kernel

import (
	voxelfusion "github.com/gekko3d/voxelfusion"
	"github.com/gekko3d/voxelfusion/core"
	"github.com/gekko3d/voxelfusion/device"
	"github.com/gekko3d/voxelfusion/hashmap"
)

// Dispatcher is a stringly-typed entry point: a single execute(srcs, dsts,
// op_code) call, srcs/dsts being string-keyed tensor maps. Blocks is the
// persistent hash map collaborator TSDFTouch activates against, an
// external collaborator rather than one of the tensors moving through
// srcs/dsts.
type Dispatcher struct {
	Blocks        *hashmap.SpatialHashMap
	Logger        voxelfusion.Logger
	MaxOutputRows int64

	// StrictCentralDifference is threaded into MarchingCubes; see
	// kernel/marching_cubes.go's KNOWN ISSUE comment. Defaults to false
	// (the long-standing behavior).
	StrictCentralDifference bool
}

// NewDispatcher wires a Dispatcher with everything the dispatch loop
// needs handed in once, not looked up later.
func NewDispatcher(blocks *hashmap.SpatialHashMap, logger voxelfusion.Logger) *Dispatcher {
	if logger == nil {
		logger = voxelfusion.NewNopLogger()
	}
	return &Dispatcher{Blocks: blocks, Logger: logger, MaxOutputRows: voxelfusion.DefaultMaxOutputRows}
}

// Execute dispatches srcs/dsts to the kernel named by op. RayCasting is a
// real no-op, Debug launches N=10 empty workloads, and unknown op codes
// are logged and ignored rather than silently collapsed into a default
// case.
func (d *Dispatcher) Execute(srcs, dsts map[string]*core.Tensor, op voxelfusion.OpCode) error {
	call := voxelfusion.NewCallLogger(d.Logger, op)
	call.Debugf("dispatch")

	switch op {
	case voxelfusion.OpUnproject:
		return d.execUnproject(srcs, dsts)
	case voxelfusion.OpTSDFTouch:
		return d.execTouch(srcs, dsts)
	case voxelfusion.OpTSDFIntegrate:
		return d.execIntegrate(srcs, dsts)
	case voxelfusion.OpTSDFSurfaceExtraction:
		return d.execSurfaceExtraction(srcs, dsts)
	case voxelfusion.OpMarchingCubes:
		return d.execMarchingCubes(srcs, dsts)
	case voxelfusion.OpRayCasting:
		call.Debugf("reserved no-op")
		return nil
	case voxelfusion.OpDebug:
		device.ParallelFor(10, func(int) {})
		call.Debugf("launched 10 empty workloads")
		return nil
	default:
		call.Warnf("unknown op code %d ignored", int(op))
		return nil
	}
}

func requireSrc(srcs map[string]*core.Tensor, op voxelfusion.OpCode, key string) (*core.Tensor, error) {
	t, ok := srcs[key]
	if !ok || t == nil {
		return nil, &voxelfusion.DispatchError{Op: op, Key: key, Message: "required src tensor is missing"}
	}
	return t, nil
}

func requireDst(dsts map[string]*core.Tensor, op voxelfusion.OpCode, key string) (*core.Tensor, error) {
	t, ok := dsts[key]
	if !ok || t == nil {
		return nil, &voxelfusion.DispatchError{Op: op, Key: key, Message: "required dst tensor is missing"}
	}
	return t, nil
}

func requireRank(t *core.Tensor, op voxelfusion.OpCode, key string, rank int) error {
	if len(t.Shape) != rank {
		return &voxelfusion.DispatchError{Op: op, Key: key, Message: "wrong rank"}
	}
	return nil
}

func scalarF32(t *core.Tensor) float32 { return t.Float32At(0) }
func scalarI64(t *core.Tensor) int64   { return t.Int64At(0) }

func int64SliceFrom(t *core.Tensor) []int64 {
	n := t.Shape[0]
	out := make([]int64, n)
	for i := int64(0); i < n; i++ {
		out[i] = t.Int64At(i)
	}
	return out
}

func mat3From(t *core.Tensor) [3][3]float32 {
	var m [3][3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = t.Float32At(int64(i*3 + j))
		}
	}
	return m
}

func mat4From(t *core.Tensor) [4][4]float32 {
	var m [4][4]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = t.Float32At(int64(i*4 + j))
		}
	}
	return m
}

func nbIndicesFrom(t *core.Tensor) [27][]int64 {
	k := t.Shape[1]
	var out [27][]int64
	for nb := 0; nb < 27; nb++ {
		row := make([]int64, k)
		for ki := int64(0); ki < k; ki++ {
			row[ki] = t.Int64At(int64(nb)*k + ki)
		}
		out[nb] = row
	}
	return out
}

func nbMasksFrom(t *core.Tensor) [27][]bool {
	k := t.Shape[1]
	var out [27][]bool
	for nb := 0; nb < 27; nb++ {
		row := make([]bool, k)
		for ki := int64(0); ki < k; ki++ {
			row[ki] = t.BoolAt(int64(nb)*k + ki)
		}
		out[nb] = row
	}
	return out
}

func (d *Dispatcher) capacity(n int64) int64 {
	rows := n * 3
	if rows > d.MaxOutputRows {
		rows = d.MaxOutputRows
	}
	return rows
}

func (d *Dispatcher) execUnproject(srcs, dsts map[string]*core.Tensor) error {
	op := voxelfusion.OpUnproject
	depth, err := requireSrc(srcs, op, "depth")
	if err != nil {
		return err
	}
	if err := requireRank(depth, op, "depth", 2); err != nil {
		return err
	}
	intrinsics, err := requireSrc(srcs, op, "intrinsics")
	if err != nil {
		return err
	}
	depthScale, err := requireSrc(srcs, op, "depth_scale")
	if err != nil {
		return err
	}
	depthMax, err := requireSrc(srcs, op, "depth_max")
	if err != nil {
		return err
	}

	dsts["vertex_map"] = Unproject(depth, mat3From(intrinsics), scalarF32(depthScale), scalarF32(depthMax))
	return nil
}

func (d *Dispatcher) execTouch(srcs, dsts map[string]*core.Tensor) error {
	op := voxelfusion.OpTSDFTouch
	points, err := requireSrc(srcs, op, "points")
	if err != nil {
		return err
	}
	if err := requireRank(points, op, "points", 2); err != nil {
		return err
	}
	voxelSize, err := requireSrc(srcs, op, "voxel_size")
	if err != nil {
		return err
	}
	resolution, err := requireSrc(srcs, op, "resolution")
	if err != nil {
		return err
	}

	dsts["block_coords"] = Touch(points, scalarF32(voxelSize), scalarI64(resolution), d.Blocks)
	return nil
}

func (d *Dispatcher) execIntegrate(srcs, dsts map[string]*core.Tensor) error {
	op := voxelfusion.OpTSDFIntegrate
	depth, err := requireSrc(srcs, op, "depth")
	if err != nil {
		return err
	}
	indices, err := requireSrc(srcs, op, "indices")
	if err != nil {
		return err
	}
	blockKeys, err := requireSrc(srcs, op, "block_keys")
	if err != nil {
		return err
	}
	intrinsics, err := requireSrc(srcs, op, "intrinsics")
	if err != nil {
		return err
	}
	extrinsics, err := requireSrc(srcs, op, "extrinsics")
	if err != nil {
		return err
	}
	resolution, err := requireSrc(srcs, op, "resolution")
	if err != nil {
		return err
	}
	voxelSize, err := requireSrc(srcs, op, "voxel_size")
	if err != nil {
		return err
	}
	sdfTrunc, err := requireSrc(srcs, op, "sdf_trunc")
	if err != nil {
		return err
	}
	depthScale, err := requireSrc(srcs, op, "depth_scale")
	if err != nil {
		return err
	}
	blockValues, err := requireDst(dsts, op, "block_values")
	if err != nil {
		return err
	}

	Integrate(depth, int64SliceFrom(indices), blockKeys, blockValues,
		mat3From(intrinsics), mat4From(extrinsics), scalarI64(resolution),
		scalarF32(voxelSize), scalarF32(sdfTrunc), scalarF32(depthScale))
	return nil
}

func (d *Dispatcher) execSurfaceExtraction(srcs, dsts map[string]*core.Tensor) error {
	op := voxelfusion.OpTSDFSurfaceExtraction
	indices, err := requireSrc(srcs, op, "indices")
	if err != nil {
		return err
	}
	nbIndices, err := requireSrc(srcs, op, "nb_indices")
	if err != nil {
		return err
	}
	nbMasks, err := requireSrc(srcs, op, "nb_masks")
	if err != nil {
		return err
	}
	blockKeys, err := requireSrc(srcs, op, "block_keys")
	if err != nil {
		return err
	}
	blockValues, err := requireSrc(srcs, op, "block_values")
	if err != nil {
		return err
	}
	voxelSize, err := requireSrc(srcs, op, "voxel_size")
	if err != nil {
		return err
	}
	resolution, err := requireSrc(srcs, op, "resolution")
	if err != nil {
		return err
	}

	idx := int64SliceFrom(indices)
	r := scalarI64(resolution)
	n := int64(len(idx)) * r * r * r

	dsts["points"] = SurfaceExtraction(idx, nbIndicesFrom(nbIndices), nbMasksFrom(nbMasks),
		blockKeys, blockValues, scalarF32(voxelSize), r, d.capacity(n))
	return nil
}

func (d *Dispatcher) execMarchingCubes(srcs, dsts map[string]*core.Tensor) error {
	op := voxelfusion.OpMarchingCubes
	indices, err := requireSrc(srcs, op, "indices")
	if err != nil {
		return err
	}
	invIndices, err := requireSrc(srcs, op, "inv_indices")
	if err != nil {
		return err
	}
	nbIndices, err := requireSrc(srcs, op, "nb_indices")
	if err != nil {
		return err
	}
	nbMasks, err := requireSrc(srcs, op, "nb_masks")
	if err != nil {
		return err
	}
	blockKeys, err := requireSrc(srcs, op, "block_keys")
	if err != nil {
		return err
	}
	blockValues, err := requireSrc(srcs, op, "block_values")
	if err != nil {
		return err
	}
	voxelSize, err := requireSrc(srcs, op, "voxel_size")
	if err != nil {
		return err
	}
	resolution, err := requireSrc(srcs, op, "resolution")
	if err != nil {
		return err
	}
	meshStructure, err := requireDst(dsts, op, "mesh_structure")
	if err != nil {
		return err
	}

	idx := int64SliceFrom(indices)
	invIdx := int64SliceFrom(invIndices)
	if err := assertBackReferences(op, idx, invIdx); err != nil {
		return err
	}
	r := scalarI64(resolution)
	n := int64(len(idx)) * r * r * r

	vertices, normals := MarchingCubes(idx, invIdx, nbIndicesFrom(nbIndices), nbMasksFrom(nbMasks),
		blockKeys, blockValues, meshStructure, scalarF32(voxelSize), r, d.capacity(n), d.StrictCentralDifference)
	dsts["vertices"] = vertices
	dsts["normals"] = normals
	return nil
}

// assertBackReferences checks that indices[inv_indices[b]] == b for every
// selected block b. It is cheap (O(K)) so it runs unconditionally
// rather than behind a build tag; a violation means the caller built
// inv_indices inconsistently with indices, a contract bug worth surfacing
// as a DispatchError rather than corrupting mesh_structure addressing.
func assertBackReferences(op voxelfusion.OpCode, indices, invIndices []int64) error {
	for k, b := range indices {
		if b < 0 || int(b) >= len(invIndices) {
			return &voxelfusion.DispatchError{Op: op, Key: "inv_indices", Message: "indices references a block id out of inv_indices range"}
		}
		if invIndices[b] != int64(k) {
			return &voxelfusion.DispatchError{Op: op, Key: "inv_indices", Message: "indices[inv_indices[b]] != b"}
		}
	}
	return nil
}
