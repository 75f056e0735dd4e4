package vigor

import (
	"errors"
	"math"
	"testing"
)

// adjTree is a Tree backed by an adjacency list.
type adjTree struct {
	children [][]int
	exposure []float64
}

func (t adjTree) Len() int                        { return len(t.children) }
func (t adjTree) Root() int                       { return 0 }
func (t adjTree) Children(i int, dst []int) []int { return append(dst, t.children[i]...) }
func (t adjTree) Exposure(i int) float64          { return t.exposure[i] }

func TestSortPostorder(t *testing.T) {
	tree := adjTree{
		children: [][]int{{1, 2}, {3}, nil, nil},
		exposure: make([]float64, 4),
	}

	order, err := Sort(tree)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(order) != 4 || order[len(order)-1] != 0 {
		t.Fatalf("order = %v, want root last over 4 entities", order)
	}

	pos := make(map[int]int)
	for i, n := range order {
		pos[n] = i
	}
	for parent, kids := range tree.children {
		for _, c := range kids {
			if pos[c] > pos[parent] {
				t.Errorf("child %d sorted after parent %d", c, parent)
			}
		}
	}
}

func TestSortCycle(t *testing.T) {
	tree := adjTree{
		children: [][]int{{1}, {2}, {0}},
		exposure: make([]float64, 3),
	}
	if _, err := Sort(tree); !errors.Is(err, ErrCycle) {
		t.Errorf("Sort error = %v, want ErrCycle", err)
	}
}

func TestSortSkipsUnreachable(t *testing.T) {
	tree := adjTree{
		children: [][]int{{1}, nil, nil},
		exposure: make([]float64, 3),
	}
	order, err := Sort(tree)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 {
		t.Errorf("order = %v, want only reachable entities", order)
	}
}

func TestDistributeSingleChild(t *testing.T) {
	tree := adjTree{
		children: [][]int{{1}, {2}, nil},
		exposure: []float64{0, 0, 0.8},
	}

	a, err := Distribute(tree, 0.5, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range a.Vigor {
		if math.Abs(v-0.8) > 1e-12 {
			t.Errorf("vigor[%d] = %v, want 0.8", i, v)
		}
	}
	if math.Abs(a.Exposure[0]-0.8) > 1e-12 {
		t.Errorf("root exposure = %v, want 0.8", a.Exposure[0])
	}
}

func TestDistributeConservesWithOneLateral(t *testing.T) {
	tests := []struct {
		name     string
		exposure []float64
		lambda   float64
	}{
		{"balanced", []float64{0, 0.5, 0.5}, 0.5},
		{"apical", []float64{0, 0.3, 0.7}, 0.9},
		{"basal", []float64{0.2, 0.6, 0.1}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := adjTree{children: [][]int{{2, 1}, nil, nil}, exposure: tt.exposure}
			a, err := Distribute(tree, tt.lambda, math.Inf(1))
			if err != nil {
				t.Fatal(err)
			}
			sum := a.Vigor[1] + a.Vigor[2]
			if math.Abs(sum-a.Vigor[0]) > 1e-12 {
				t.Errorf("children sum %v != parent %v", sum, a.Vigor[0])
			}
		})
	}
}

func TestDistributeLateralsShareEqually(t *testing.T) {
	tree := adjTree{
		children: [][]int{{1, 2, 3}, nil, nil, nil},
		exposure: []float64{0, 0.4, 0.3, 0.3},
	}
	a, err := Distribute(tree, 0.7, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}

	v := a.Vigor[0]
	vm := a.Vigor[1]
	wantVm := v * 0.7 * 0.4 / (0.7*0.4 + 0.3*0.6)
	if math.Abs(vm-wantVm) > 1e-12 {
		t.Errorf("main vigor = %v, want %v", vm, wantVm)
	}
	for _, c := range []int{2, 3} {
		if math.Abs(a.Vigor[c]-(v-vm)) > 1e-12 {
			t.Errorf("lateral %d vigor = %v, want %v", c, a.Vigor[c], v-vm)
		}
	}
}

func TestDistributeRootCap(t *testing.T) {
	tree := adjTree{children: [][]int{{1}, nil}, exposure: []float64{0, 5}}
	a, err := Distribute(tree, 0.5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.Vigor[0] != 2 || a.Vigor[1] != 2 {
		t.Errorf("vigor = %v, want capped at 2", a.Vigor)
	}
}

func TestSplitZeroMain(t *testing.T) {
	vm, vl := Split(3, 0, 1, 0.5)
	if vm != 0 || vl != 3 {
		t.Errorf("Split with Qm=0 = (%v, %v), want (0, 3)", vm, vl)
	}
	vm, vl = Split(3, 1, 0, 0)
	if vm != 0 || vl != 3 {
		t.Errorf("Split with zero denominator = (%v, %v), want (0, 3)", vm, vl)
	}
}

func TestSplitApicalMonotone(t *testing.T) {
	prev := -1.0
	for _, lambda := range []float64{0.05, 0.2, 0.4, 0.6, 0.8, 0.95} {
		vm, _ := Split(1, 0.4, 0.6, lambda)
		if vm <= prev {
			t.Errorf("lambda %v: main share %v did not increase from %v", lambda, vm, prev)
		}
		prev = vm
	}
}
