package kernel

import (
	"testing"

	"github.com/gekko3d/voxelfusion/core"
)

// singleBlockNeighborhood returns a 27-entry neighbor table where only the
// center entry (nb=13, offset (0,0,0)) resolves, to block 0 — enough for
// any test whose crossings stay inside one block.
func singleBlockNeighborhood() (nbIndices [27][]int64, nbMasks [27][]bool) {
	for nb := 0; nb < 27; nb++ {
		nbIndices[nb] = []int64{0}
		nbMasks[nb] = []bool{nb == 13}
	}
	return nbIndices, nbMasks
}

func TestSurfaceExtractionEmitsZeroCrossing(t *testing.T) {
	blockKeys := core.NewTensor([]int64{1, 3}, core.Int64)
	blockValues := core.NewTensor([]int64{1, 2, 2, 2, 2}, core.Float32)
	blockValues.SetFloat32At(0, -0.5) // voxel (0,0,0): tsdf
	blockValues.SetFloat32At(1, 1)    // voxel (0,0,0): weight
	blockValues.SetFloat32At(2, 0.5)  // voxel (1,0,0): tsdf
	blockValues.SetFloat32At(3, 1)    // voxel (1,0,0): weight

	nbIndices, nbMasks := singleBlockNeighborhood()
	points := SurfaceExtraction([]int64{0}, nbIndices, nbMasks, blockKeys, blockValues, 1.0, 2, 10)

	if points.Shape[0] != 1 {
		t.Fatalf("want exactly 1 crossing point, got %d", points.Shape[0])
	}
	px, py, pz := points.Float32At(0), points.Float32At(1), points.Float32At(2)
	if !approxEqual(px, 0.5, 1e-6) || py != 0 || pz != 0 {
		t.Fatalf("want crossing at (0.5,0,0), got (%v,%v,%v)", px, py, pz)
	}
}

func TestSurfaceExtractionSkipsZeroWeightVoxels(t *testing.T) {
	blockKeys := core.NewTensor([]int64{1, 3}, core.Int64)
	blockValues := core.NewTensor([]int64{1, 2, 2, 2, 2}, core.Float32)
	// Both voxels flip sign but carry zero weight: no observation yet.
	blockValues.SetFloat32At(0, -0.5)
	blockValues.SetFloat32At(2, 0.5)

	nbIndices, nbMasks := singleBlockNeighborhood()
	points := SurfaceExtraction([]int64{0}, nbIndices, nbMasks, blockKeys, blockValues, 1.0, 2, 10)
	if points.Shape[0] != 0 {
		t.Fatalf("want 0 points when weights are 0, got %d", points.Shape[0])
	}
}

func TestSurfaceExtractionRespectsCapacity(t *testing.T) {
	blockKeys := core.NewTensor([]int64{1, 3}, core.Int64)
	blockValues := core.NewTensor([]int64{1, 2, 2, 2, 2}, core.Float32)
	blockValues.SetFloat32At(0, -0.5)
	blockValues.SetFloat32At(1, 1)
	blockValues.SetFloat32At(2, 0.5)
	blockValues.SetFloat32At(3, 1)

	nbIndices, nbMasks := singleBlockNeighborhood()
	points := SurfaceExtraction([]int64{0}, nbIndices, nbMasks, blockKeys, blockValues, 1.0, 2, 0)
	if points.Shape[0] != 0 {
		t.Fatalf("capacity 0 must drop all emissions, got %d", points.Shape[0])
	}
}
