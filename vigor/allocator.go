// Package vigor distributes growth resource through a tree in two passes:
// light exposure accumulates from leaves to root, then vigor is split from
// root to leaves under apical control.
package vigor

import (
	"errors"
	"fmt"
	"math"
)

// ErrCycle is returned when the topological sort revisits an entity that is
// still in progress.
var ErrCycle = errors.New("cycle in vigor tree")

// Tree is a rooted tree of dense indices 0..Len()-1.
type Tree interface {
	Len() int
	Root() int
	// Children appends the available children of i to dst.
	Children(i int, dst []int) []int
	// Exposure is the entity's own light exposure.
	Exposure(i int) float64
}

// Mark is the topological sort state of an entity.
type Mark uint8

const (
	MarkNone Mark = iota
	MarkInProgress
	MarkDone
)

// Allocation holds the result of a distribution pass, indexed like the tree.
type Allocation struct {
	Order    []int     // Children before parents, root last
	Exposure []float64 // Accumulated exposure Q
	Vigor    []float64
}

// Sort returns the entities reachable from the root in depth-first
// postorder, so every entity comes after all of its children.
func Sort(t Tree) ([]int, error) {
	marks := make([]Mark, t.Len())
	order := make([]int, 0, t.Len())
	var scratch []int

	var visit func(i int) error
	visit = func(i int) error {
		switch marks[i] {
		case MarkDone:
			return nil
		case MarkInProgress:
			return fmt.Errorf("entity %d: %w", i, ErrCycle)
		}
		marks[i] = MarkInProgress

		start := len(scratch)
		scratch = t.Children(i, scratch)
		children := append([]int(nil), scratch[start:]...)
		scratch = scratch[:start]

		for _, c := range children {
			if err := visit(c); err != nil {
				return err
			}
		}
		marks[i] = MarkDone
		order = append(order, i)
		return nil
	}

	if t.Len() == 0 {
		return order, nil
	}
	if err := visit(t.Root()); err != nil {
		return nil, err
	}
	return order, nil
}

// Distribute runs both passes. The root receives min(Q(root), rootCap);
// pass math.Inf(1) for an uncapped root.
func Distribute(t Tree, lambda, rootCap float64) (Allocation, error) {
	order, err := Sort(t)
	if err != nil {
		return Allocation{}, err
	}

	n := t.Len()
	a := Allocation{
		Order:    order,
		Exposure: make([]float64, n),
		Vigor:    make([]float64, n),
	}
	if len(order) == 0 {
		return a, nil
	}

	var children []int

	// Basipetal: leaves to root
	for _, i := range order {
		q := t.Exposure(i)
		children = t.Children(i, children[:0])
		for _, c := range children {
			q += a.Exposure[c]
		}
		a.Exposure[i] = q
	}

	root := order[len(order)-1]
	a.Vigor[root] = math.Min(a.Exposure[root], rootCap)

	// Acropetal: root to leaves
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		v := a.Vigor[i]
		children = t.Children(i, children[:0])

		switch len(children) {
		case 0:
		case 1:
			a.Vigor[children[0]] = v
		default:
			main := children[0]
			for _, c := range children[1:] {
				if c < main {
					main = c
				}
			}
			qm := a.Exposure[main]
			vm, vl := Split(v, qm, a.Exposure[i]-qm, lambda)
			for _, c := range children {
				if c == main {
					a.Vigor[c] = vm
				} else {
					a.Vigor[c] = vl
				}
			}
		}
	}

	return a, nil
}

// Split divides vigor v between a main child with exposure qMain and the
// laterals with combined exposure qLateral. Each lateral receives the full
// lateral share.
func Split(v, qMain, qLateral, lambda float64) (main, lateral float64) {
	if qMain == 0 {
		return 0, v
	}
	denom := lambda*qMain + (1-lambda)*qLateral
	if denom == 0 {
		return 0, v
	}
	main = v * lambda * qMain / denom
	return main, v - main
}
