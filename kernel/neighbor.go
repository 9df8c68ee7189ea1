package kernel

// NeighborIndex flattens a (dx,dy,dz) offset in {-1,0,1}^3 to [0,27), with
// the center (0,0,0) at index 13.
func NeighborIndex(dx, dy, dz int64) int {
	return int((dx + 1) + 3*(dy+1) + 9*(dz+1))
}

// NeighborOffsetOf is the inverse of NeighborIndex.
func NeighborOffsetOf(nb int) (dx, dy, dz int64) {
	n := int64(nb)
	dx = n%3 - 1
	n /= 3
	dy = n%3 - 1
	n /= 3
	dz = n - 1
	return dx, dy, dz
}

// floorDivMod is Euclidean floor division: unlike Go's truncating /%, the
// remainder is always in [0, b).
func floorDivMod(a, b int64) (q, r int64) {
	q = a / b
	r = a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

// locateVoxel takes a voxel coordinate that may have stepped outside its
// own block along one or more axes and returns which of the 27 neighbors
// owns it, plus its local (block-relative) coordinate. Generalized to all
// three axes at once so Marching Cubes' corner lookups (which can step
// along all three) reuse it.
func locateVoxel(resolution int64, x, y, z int64) (nb int, lx, ly, lz int64) {
	dxb, lxr := floorDivMod(x, resolution)
	dyb, lyr := floorDivMod(y, resolution)
	dzb, lzr := floorDivMod(z, resolution)
	return NeighborIndex(dxb, dyb, dzb), lxr, lyr, lzr
}
