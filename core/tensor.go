// Package core holds the indexing and transform primitives the TSDF
// kernels are built on: a minimal typed n-dim tensor, the NDArrayIndexer
// that maps workload ids to coordinates and data pointers, and the
// TransformIndexer that applies camera extrinsics/intrinsics.
package core

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DType names the element type backing a Tensor. Kernels only ever see
// Float32, Int64, Int32 and Bool tensors.
type DType int

const (
	Float32 DType = iota
	Int64
	Int32
	Bool
)

func (d DType) Size() int64 {
	switch d {
	case Float32, Int32, Bool:
		return 4
	case Int64:
		return 8
	default:
		panic(fmt.Sprintf("core: unknown dtype %d", d))
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int64:
		return "int64"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Device stands in for the device a parallel launcher dispatches work onto.
// This module only implements a CPU device — a real deployment would add a
// CUDA-backed Device and swap the launcher, not the kernels.
type Device struct {
	Kind string
	ID   int
}

var CPU = Device{Kind: "CPU", ID: 0}

// Tensor is the minimal typed n-dim buffer the kernels consume: shape,
// dtype, device, and a byte-addressed data pointer. Real tensor allocation,
// broadcasting, and views are an external collaborator; this type exists
// only so the kernels below have something concrete to run against.
// Byte-level accessors use manual binary.LittleEndian packing into a
// reusable typed view instead of one-off struct packing.
type Tensor struct {
	Shape  []int64
	DType  DType
	Device Device
	Data   []byte
}

// NewTensor allocates a zeroed, contiguous row-major tensor of the given
// shape and dtype on the CPU device.
func NewTensor(shape []int64, dtype DType) *Tensor {
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		Shape:  append([]int64(nil), shape...),
		DType:  dtype,
		Device: CPU,
		Data:   make([]byte, n*dtype.Size()),
	}
}

// NumElements returns the product of Shape.
func (t *Tensor) NumElements() int64 {
	n := int64(1)
	for _, s := range t.Shape {
		n *= s
	}
	return n
}

func (t *Tensor) checkFits(elemIdx int64) {
	if elemIdx < 0 || (elemIdx+1)*t.DType.Size() > int64(len(t.Data)) {
		panic(fmt.Sprintf("core: tensor index %d out of range (dtype %s, %d elements)", elemIdx, t.DType, len(t.Data)/int(t.DType.Size())))
	}
}

func (t *Tensor) Float32At(elemIdx int64) float32 {
	t.checkFits(elemIdx)
	off := elemIdx * 4
	return math.Float32frombits(binary.LittleEndian.Uint32(t.Data[off : off+4]))
}

func (t *Tensor) SetFloat32At(elemIdx int64, v float32) {
	t.checkFits(elemIdx)
	off := elemIdx * 4
	binary.LittleEndian.PutUint32(t.Data[off:off+4], math.Float32bits(v))
}

func (t *Tensor) Int64At(elemIdx int64) int64 {
	t.checkFits(elemIdx)
	off := elemIdx * 8
	return int64(binary.LittleEndian.Uint64(t.Data[off : off+8]))
}

func (t *Tensor) SetInt64At(elemIdx int64, v int64) {
	t.checkFits(elemIdx)
	off := elemIdx * 8
	binary.LittleEndian.PutUint64(t.Data[off:off+8], uint64(v))
}

func (t *Tensor) Int32At(elemIdx int64) int32 {
	t.checkFits(elemIdx)
	off := elemIdx * 4
	return int32(binary.LittleEndian.Uint32(t.Data[off : off+4]))
}

func (t *Tensor) SetInt32At(elemIdx int64, v int32) {
	t.checkFits(elemIdx)
	off := elemIdx * 4
	binary.LittleEndian.PutUint32(t.Data[off:off+4], uint32(v))
}

func (t *Tensor) BoolAt(elemIdx int64) bool {
	t.checkFits(elemIdx)
	return t.Data[elemIdx*4] != 0
}

func (t *Tensor) SetBoolAt(elemIdx int64, v bool) {
	t.checkFits(elemIdx)
	off := elemIdx * 4
	if v {
		t.Data[off] = 1
	} else {
		t.Data[off] = 0
	}
}

// TensorFromFloat32 wraps an existing slice as a Tensor without copying,
// for building test fixtures and for kernels that hand back host-resident
// results.
func TensorFromFloat32(shape []int64, values []float32) *Tensor {
	t := NewTensor(shape, Float32)
	for i, v := range values {
		t.SetFloat32At(int64(i), v)
	}
	return t
}

// TensorFromInt64 wraps an existing slice as a Tensor, see TensorFromFloat32.
func TensorFromInt64(shape []int64, values []int64) *Tensor {
	t := NewTensor(shape, Int64)
	for i, v := range values {
		t.SetInt64At(int64(i), v)
	}
	return t
}
