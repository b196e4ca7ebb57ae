package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrInvalidMaterial            = errors.New("invalid material")
	ErrSingularJacobian           = errors.New("singular jacobian")
	ErrUnmatchedBoundaryCondition = errors.New("unmatched boundary condition")
	ErrSingularMatrix             = errors.New("singular matrix")
	ErrInvalidTopology            = errors.New("invalid topology")
)

type MaterialError struct {
	Material Material
	Reason   string
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("%v \"%s\" (E = %g, nu = %g): %s",
		ErrInvalidMaterial, e.Material.Name, e.Material.E, e.Material.Nu, e.Reason)
}

func (e *MaterialError) Unwrap() error { return ErrInvalidMaterial }

// JacobianError reports a degenerate or inverted element
type JacobianError struct {
	ElementID int
	Point     [3]float64 // natural coordinates where the check failed
	Det       float64
}

func (e *JacobianError) Error() string {
	return fmt.Sprintf("%v: element %d, det(J) = %g at natural point %v",
		ErrSingularJacobian, e.ElementID, e.Det, e.Point)
}

func (e *JacobianError) Unwrap() error { return ErrSingularJacobian }

type ConditionKind uint8

const (
	SupportCondition ConditionKind = iota
	LoadCondition
)

func (k ConditionKind) String() string {
	return [...]string{"support", "load"}[k]
}

// UnmatchedError reports a load or support that found no node
type UnmatchedError struct {
	Kind     ConditionKind
	Index    int // position in Model.Loads or Model.Supports
	Node     int
	Position r3.Vec
}

func (e *UnmatchedError) Error() string {
	if e.Node != Unassigned {
		return fmt.Sprintf("%v: %s %d names node %d which is not in the model",
			ErrUnmatchedBoundaryCondition, e.Kind, e.Index, e.Node)
	}
	return fmt.Sprintf("%v: %s %d at (%g, %g, %g) does not coincide with any node",
		ErrUnmatchedBoundaryCondition, e.Kind, e.Index, e.Position.X, e.Position.Y, e.Position.Z)
}

func (e *UnmatchedError) Unwrap() error { return ErrUnmatchedBoundaryCondition }

// SingularMatrixError reports an under constrained or disconnected system
type SingularMatrixError struct {
	NDOF   int
	Reason string
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("%v: %d equations, %s", ErrSingularMatrix, e.NDOF, e.Reason)
}

func (e *SingularMatrixError) Unwrap() error { return ErrSingularMatrix }

type TopologyError struct {
	ElementID int // -1 when the problem is not tied to one element
	Reason    string
}

func (e *TopologyError) Error() string {
	if e.ElementID < 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidTopology, e.Reason)
	}
	return fmt.Sprintf("%v: element %d: %s", ErrInvalidTopology, e.ElementID, e.Reason)
}

func (e *TopologyError) Unwrap() error { return ErrInvalidTopology }
