package voxelfusion

import "fmt"

// OpCode names a dispatchable kernel.
type OpCode int

const (
	OpUnproject OpCode = iota
	OpTSDFTouch
	OpTSDFIntegrate
	OpTSDFSurfaceExtraction
	OpMarchingCubes
	OpRayCasting
	OpDebug
)

func (op OpCode) String() string {
	switch op {
	case OpUnproject:
		return "Unproject"
	case OpTSDFTouch:
		return "TSDFTouch"
	case OpTSDFIntegrate:
		return "TSDFIntegrate"
	case OpTSDFSurfaceExtraction:
		return "SurfaceExtraction"
	case OpMarchingCubes:
		return "MarchingCubes"
	case OpRayCasting:
		return "RayCasting"
	case OpDebug:
		return "Debug"
	default:
		return fmt.Sprintf("OpCode(%d)", int(op))
	}
}

// DispatchError is a contract error: a required tensor was missing, or had
// the wrong rank, for a given op. Contract errors are fatal and carry
// no partial side effects — callers get them back as plain errors, never a
// panic.
type DispatchError struct {
	Op      OpCode
	Key     string
	Message string
}

func (e *DispatchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %q: %s", e.Op, e.Key, e.Message)
}
