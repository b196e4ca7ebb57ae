package model

import (
	"fmt"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/utils"
)

func (m *Model) MatchTolerance() float64 {
	if m.Tolerance > 0 {
		return m.Tolerance
	}
	return utils.NODETOL
}

// Ordered returns the element's nodes placed at their local ids
func (el Element) Ordered() (nodes [hex8.NNodes]Node) {
	for _, n := range el.Nodes {
		nodes[n.LocalID] = n
	}
	return
}

func (el Element) checkLocalIDs() error {
	var (
		I      = utils.NewIndex(hex8.NNodes)
		global = make(map[int]bool, hex8.NNodes)
	)
	for i, n := range el.Nodes {
		I[i] = n.LocalID
		if n.GlobalID < 0 {
			return &TopologyError{el.ID, fmt.Sprintf("negative global id %d", n.GlobalID)}
		}
		if global[n.GlobalID] {
			return &TopologyError{el.ID, fmt.Sprintf("global id %d used twice", n.GlobalID)}
		}
		global[n.GlobalID] = true
	}
	if !I.IsPermutation() {
		return &TopologyError{el.ID, fmt.Sprintf("local ids %v are not a permutation of 0..7", []int(I))}
	}
	return nil
}

// GlobalNodes checks the topology and returns one node per global id, at
// its id. The first occurrence of each id supplies the record.
func (m *Model) GlobalNodes() (nodes []Node, err error) {
	var (
		tol   = m.MatchTolerance()
		byID  = make(map[int]Node)
		maxID = -1
	)
	if len(m.Elements) == 0 {
		err = &TopologyError{-1, "model has no elements"}
		return
	}
	for _, el := range m.Elements {
		if err = el.checkLocalIDs(); err != nil {
			return
		}
		for _, n := range el.Nodes {
			first, ok := byID[n.GlobalID]
			if !ok {
				byID[n.GlobalID] = n
				if n.GlobalID > maxID {
					maxID = n.GlobalID
				}
				continue
			}
			if !utils.PointsCoincide(first.Position, n.Position, tol) {
				err = &TopologyError{el.ID, fmt.Sprintf("node %d at %v disagrees with its earlier position %v",
					n.GlobalID, n.Position, first.Position)}
				return
			}
		}
	}
	if maxID != len(byID)-1 {
		err = &TopologyError{-1, fmt.Sprintf("global ids must be contiguous from 0: %d distinct ids, largest %d",
			len(byID), maxID)}
		return
	}
	nodes = make([]Node, len(byID))
	for id, n := range byID {
		nodes[id] = n
	}
	return
}

func (m *Model) Validate() (err error) {
	_, err = m.GlobalNodes()
	return
}
