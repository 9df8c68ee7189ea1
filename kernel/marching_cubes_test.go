package kernel

import (
	"testing"

	"github.com/gekko3d/voxelfusion/core"
)

// singleCornerCube builds a resolution-3 single-block fixture where only
// the origin corner of the center cube (voxel (1,1,1)) is inside the
// surface (tsdf < 0) and the other 7 corners are outside — classic case 1,
// edgeTable[1] crossing exactly the 3 edges touching corner 0.
func singleCornerCube(t *testing.T) (indices, invIndices []int64, blockKeys, blockValues, meshStructure *core.Tensor) {
	t.Helper()
	const r = 3
	indices = []int64{0}
	invIndices = []int64{0}
	blockKeys = core.NewTensor([]int64{1, 3}, core.Int64)
	blockValues = core.NewTensor([]int64{1, r, r, r, 2}, core.Float32)
	meshStructure = core.NewTensor([]int64{1, r, r, r, 4}, core.Int32)

	voxIndexer := core.NewNDArrayIndexer([]int64{r, r, r}, 4)
	for x := int64(0); x < r; x++ {
		for y := int64(0); y < r; y++ {
			for z := int64(0); z < r; z++ {
				idx := voxIndexer.CoordToWorkload([]int64{x, y, z})
				elem := idx * 2
				tsdf := float32(1)
				if x == 1 && y == 1 && z == 1 {
					tsdf = -1
				}
				blockValues.SetFloat32At(elem, tsdf)
				blockValues.SetFloat32At(elem+1, 1) // weight
			}
		}
	}
	return indices, invIndices, blockKeys, blockValues, meshStructure
}

// The center cube is case 1 and crosses the 3 edges its origin voxel owns.
// The cubes at (0,1,1), (1,0,1) and (1,1,0) also contain the inside voxel
// and each cross the one edge they own that ends there, so the block holds
// 6 crossed edges and emits one vertex per edge.
func TestMarchingCubesSingleInsideVoxelEmitsSixVertices(t *testing.T) {
	indices, invIndices, blockKeys, blockValues, meshStructure := singleCornerCube(t)
	nbIndices, nbMasks := singleBlockNeighborhood()

	vertices, normals := MarchingCubes(indices, invIndices, nbIndices, nbMasks, blockKeys, blockValues,
		meshStructure, 1.0, 3, 10, false)

	if vertices.Shape[0] != 6 {
		t.Fatalf("6 edges end at the inside voxel, want 6 vertices, got %d", vertices.Shape[0])
	}
	if normals.Shape[0] != 6 {
		t.Fatalf("want 6 normals, got %d", normals.Shape[0])
	}

	voxIndexer := core.NewNDArrayIndexer([]int64{3, 3, 3}, 4)
	originVoxelIdx := voxIndexer.CoordToWorkload([]int64{1, 1, 1})
	selfElem := originVoxelIdx * 4
	if c := meshStructure.Int32At(selfElem + 3); c != 1 {
		t.Fatalf("want cube case 1, got %d", c)
	}
	for ch := int64(0); ch < 3; ch++ {
		if slot := meshStructure.Int32At(selfElem + ch); slot < 0 {
			t.Fatalf("edge channel %d: want an allocated slot, got %d", ch, slot)
		}
	}
}

func TestMarchingCubesUnambiguousCasesProduceNoVertices(t *testing.T) {
	const r = 3
	indices := []int64{0}
	invIndices := []int64{0}
	blockKeys := core.NewTensor([]int64{1, 3}, core.Int64)
	blockValues := core.NewTensor([]int64{1, r, r, r, 2}, core.Float32)
	meshStructure := core.NewTensor([]int64{1, r, r, r, 4}, core.Int32)
	for i := int64(0); i < r*r*r; i++ {
		blockValues.SetFloat32At(i*2, 1)
		blockValues.SetFloat32At(i*2+1, 1)
	}
	nbIndices, nbMasks := singleBlockNeighborhood()

	vertices, _ := MarchingCubes(indices, invIndices, nbIndices, nbMasks, blockKeys, blockValues,
		meshStructure, 1.0, r, 10, false)
	if vertices.Shape[0] != 0 {
		t.Fatalf("all-outside cube (case 0) should emit nothing, got %d", vertices.Shape[0])
	}
}

// gradientCornerCube is singleCornerCube but with distinct tsdf values on
// the three voxels just outside the cube along -x/-y/-z, so a buggy
// central difference (which conflates the y and z minus-neighbors with the
// x one) is numerically distinguishable from the corrected form.
func gradientCornerCube(t *testing.T) (indices, invIndices []int64, blockKeys, blockValues, meshStructure *core.Tensor) {
	t.Helper()
	indices, invIndices, blockKeys, blockValues, meshStructure = singleCornerCube(t)
	voxIndexer := core.NewNDArrayIndexer([]int64{3, 3, 3}, 4)
	set := func(x, y, z int64, v float32) {
		elem := voxIndexer.CoordToWorkload([]int64{x, y, z}) * 2
		blockValues.SetFloat32At(elem, v)
		blockValues.SetFloat32At(elem+1, 1)
	}
	set(0, 1, 1, 5) // origin's x-minus neighbor
	set(1, 0, 1, 7) // origin's y-minus neighbor
	set(1, 1, 0, 9) // origin's z-minus neighbor
	return indices, invIndices, blockKeys, blockValues, meshStructure
}

func TestMarchingCubesStrictCentralDifferenceChangesNormals(t *testing.T) {
	indices, invIndices, blockKeys, blockValues, meshStructureA := gradientCornerCube(t)
	nbIndices, nbMasks := singleBlockNeighborhood()

	_, normalsLoose := MarchingCubes(indices, invIndices, nbIndices, nbMasks, blockKeys, blockValues,
		meshStructureA, 1.0, 3, 10, false)

	_, invIndices2, blockKeys2, blockValues2, meshStructureB := gradientCornerCube(t)
	_, normalsStrict := MarchingCubes(indices, invIndices2, nbIndices, nbMasks, blockKeys2, blockValues2,
		meshStructureB, 1.0, 3, 10, true)

	same := true
	for i := int64(0); i < normalsLoose.NumElements(); i++ {
		if normalsLoose.Float32At(i) != normalsStrict.Float32At(i) {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected StrictCentralDifference to change at least one normal component")
	}
}
