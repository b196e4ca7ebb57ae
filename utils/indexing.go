package utils

import "sort"

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

// Sort orders I in place
func (I Index) Sort() Index {
	sort.Ints(I)
	return I
}

// IsPermutation reports whether I holds each of 0..len(I)-1 exactly once
func (I Index) IsPermutation() bool {
	seen := make([]bool, len(I))
	for _, val := range I {
		if val < 0 || val >= len(I) || seen[val] {
			return false
		}
		seen[val] = true
	}
	return true
}

// FindBool returns the positions in mask holding the value target
func FindBool(mask []bool, target bool) (J Index) {
	for i, val := range mask {
		if val == target {
			J = append(J, i)
		}
	}
	return
}
