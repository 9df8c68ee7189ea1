package kernel

import (
	"testing"

	"github.com/gekko3d/voxelfusion/core"
)

func identityIntrinsics() [3][3]float32 {
	return [3][3]float32{
		{100, 0, 2},
		{0, 100, 1.5},
		{0, 0, 1},
	}
}

func TestUnprojectZeroDepthIsOrigin(t *testing.T) {
	depth := core.NewTensor([]int64{2, 2}, core.Float32)
	vm := Unproject(depth, identityIntrinsics(), 1000, 5)

	for i := int64(0); i < 4*3; i++ {
		if got := vm.Float32At(i); got != 0 {
			t.Fatalf("elem %d: want 0, got %v", i, got)
		}
	}
}

func TestUnprojectClipsFarDepth(t *testing.T) {
	depth := core.NewTensor([]int64{1, 1}, core.Float32)
	depth.SetFloat32At(0, 6000) // 6m raw, scale 1000 -> 6m, past depthMax 5m

	vm := Unproject(depth, identityIntrinsics(), 1000, 5)
	if z := vm.Float32At(2); z != 0 {
		t.Fatalf("expected clipped depth to unproject to z=0, got %v", z)
	}
}

func TestUnprojectRoundTripsThroughProject(t *testing.T) {
	intr := identityIntrinsics()
	depth := core.NewTensor([]int64{3, 3}, core.Float32)
	for i := int64(0); i < 9; i++ {
		depth.SetFloat32At(i, 2000) // 2m after scaling
	}

	vm := Unproject(depth, intr, 1000, 5)
	tx := core.NewTransformIndexer(intr, [4][4]float32{}, 0)
	for y := int64(0); y < 3; y++ {
		for x := int64(0); x < 3; x++ {
			base := (y*3 + x) * 3
			xc, yc, zc := vm.Float32At(base), vm.Float32At(base+1), vm.Float32At(base+2)
			if zc != 2 {
				t.Fatalf("(%d,%d): want zc=2, got %v", x, y, zc)
			}
			u, v := tx.Project(xc, yc, zc)
			if diff := u - float32(x); diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("(%d,%d): reprojected u=%v", x, y, u)
			}
			if diff := v - float32(y); diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("(%d,%d): reprojected v=%v", x, y, v)
			}
		}
	}
}
