package budget

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/csrdash/internal/domain"
	"gopkg.in/yaml.v3"
)

var (
	// ErrAllocationExceedsBudget indicates root categories allocate more than
	// the project's total budget.
	ErrAllocationExceedsBudget = errors.New("allocation exceeds project budget")

	// ErrAllocationExceedsParent indicates a category's children allocate
	// more than the category itself.
	ErrAllocationExceedsParent = errors.New("allocation exceeds parent category")
)

// tolerance absorbs float rounding when comparing currency sums.
const tolerance = 1e-6

// Node is one category in a Tree. Key is local to the tree; ParentKey is ""
// for roots.
type Node struct {
	Key       string
	ParentKey string
	Name      string
	Allocated float64
}

// Tree is an arena of nodes indexed by parent key.
type Tree struct {
	nodes    []Node
	byKey    map[string]int
	children map[string][]int // parent key ("" for roots) -> node indexes
}

// NewTree indexes nodes. Keys must be unique, parents must exist and the
// parent links must be acyclic.
func NewTree(nodes []Node) (*Tree, error) {
	t := &Tree{
		nodes:    make([]Node, len(nodes)),
		byKey:    make(map[string]int, len(nodes)),
		children: make(map[string][]int),
	}
	copy(t.nodes, nodes)

	for i, n := range t.nodes {
		if n.Key == "" {
			return nil, fmt.Errorf("budget category %q has no key", n.Name)
		}
		if strings.TrimSpace(n.Name) == "" {
			return nil, fmt.Errorf("budget category %q has no name", n.Key)
		}
		if n.Allocated < 0 {
			return nil, fmt.Errorf("budget category %q has negative allocation", n.Name)
		}
		if _, dup := t.byKey[n.Key]; dup {
			return nil, fmt.Errorf("duplicate budget category key %q", n.Key)
		}
		t.byKey[n.Key] = i
	}
	for i, n := range t.nodes {
		if n.ParentKey != "" {
			if _, ok := t.byKey[n.ParentKey]; !ok {
				return nil, fmt.Errorf("budget category %q references unknown parent %q", n.Name, n.ParentKey)
			}
		}
		t.children[n.ParentKey] = append(t.children[n.ParentKey], i)
	}

	// Every node must be reachable from a root; anything else sits on a cycle.
	seen := 0
	_ = t.Walk(func(Node, int) error {
		seen++
		return nil
	})
	if seen != len(t.nodes) {
		return nil, fmt.Errorf("budget categories contain a parent cycle")
	}
	return t, nil
}

// Len returns the number of categories.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the top-level categories in input order.
func (t *Tree) Roots() []Node { return t.Children("") }

// Children returns the direct children of the given key in input order.
func (t *Tree) Children(parentKey string) []Node {
	idx := t.children[parentKey]
	out := make([]Node, len(idx))
	for i, j := range idx {
		out[i] = t.nodes[j]
	}
	return out
}

// Walk visits nodes depth-first, each parent before its children.
func (t *Tree) Walk(fn func(n Node, depth int) error) error {
	var visit func(parentKey string, depth int) error
	visit = func(parentKey string, depth int) error {
		for _, i := range t.children[parentKey] {
			n := t.nodes[i]
			if err := fn(n, depth); err != nil {
				return err
			}
			if err := visit(n.Key, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return visit("", 0)
}

// RootTotal sums the allocations of the root categories.
func (t *Tree) RootTotal() float64 {
	return sumAllocated(t.Roots())
}

// Validate checks roots against totalBudget, then every category that has
// children against its own allocation, top-down.
func (t *Tree) Validate(totalBudget float64) error {
	if err := ValidateRootAllocation(t.Roots(), totalBudget); err != nil {
		return err
	}
	return t.Walk(func(n Node, _ int) error {
		kids := t.Children(n.Key)
		if len(kids) == 0 {
			return nil
		}
		if err := ValidateChildAllocation(n.Allocated, kids); err != nil {
			return fmt.Errorf("category %q: %w", n.Name, err)
		}
		return nil
	})
}

// ValidateRootAllocation fails when the roots allocate more than totalBudget.
func ValidateRootAllocation(roots []Node, totalBudget float64) error {
	sum := sumAllocated(roots)
	if sum-totalBudget > tolerance {
		return fmt.Errorf("%w: categories total %.2f, budget %.2f", ErrAllocationExceedsBudget, sum, totalBudget)
	}
	return nil
}

// ValidateChildAllocation fails when children allocate more than parentAmount.
func ValidateChildAllocation(parentAmount float64, children []Node) error {
	sum := sumAllocated(children)
	if sum-parentAmount > tolerance {
		return fmt.Errorf("%w: sub-categories total %.2f, category %.2f", ErrAllocationExceedsParent, sum, parentAmount)
	}
	return nil
}

func sumAllocated(nodes []Node) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Allocated
	}
	return sum
}

// FromCategories rebuilds a Tree from stored categories, keyed by their ids.
func FromCategories(cats []*domain.BudgetCategory) (*Tree, error) {
	nodes := make([]Node, 0, len(cats))
	for _, c := range cats {
		nodes = append(nodes, Node{
			Key:       c.ID,
			ParentKey: domain.StrVal(c.ParentID),
			Name:      c.Name,
			Allocated: c.AllocatedAmount,
		})
	}
	return NewTree(nodes)
}

// Breakdown is the nested YAML form of a budget tree:
//
//	- name: Admin
//	  allocated: 40000
//	  children:
//	    - name: Travel
//	      allocated: 15000
type Breakdown struct {
	Name      string      `yaml:"name"`
	Allocated float64     `yaml:"allocated"`
	Children  []Breakdown `yaml:"children,omitempty"`
}

// FromBreakdown flattens nested breakdown entries into a Tree. Keys are
// positional paths such as "1", "1.2".
func FromBreakdown(entries []Breakdown) (*Tree, error) {
	var nodes []Node
	var flatten func(parentKey string, list []Breakdown)
	flatten = func(parentKey string, list []Breakdown) {
		for i, b := range list {
			key := strconv.Itoa(i + 1)
			if parentKey != "" {
				key = parentKey + "." + key
			}
			nodes = append(nodes, Node{Key: key, ParentKey: parentKey, Name: b.Name, Allocated: b.Allocated})
			flatten(key, b.Children)
		}
	}
	flatten("", entries)
	return NewTree(nodes)
}

// ParseYAML parses a nested breakdown document.
func ParseYAML(data []byte) (*Tree, error) {
	var entries []Breakdown
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing budget breakdown: %w", err)
	}
	return FromBreakdown(entries)
}

// LoadYAML reads a nested breakdown file.
func LoadYAML(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading budget breakdown: %w", err)
	}
	return ParseYAML(data)
}
