package production

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// FuelKeyPrefix marks the synthetic child that supplies a burner's fuel
const FuelKeyPrefix = "__FUEL__"

// Node is one step of a production tree: an item (or recipe) produced at a
// rate, the recipe and machines producing it, and a child per ingredient plus
// one for fuel when the machine burns fuel.
//
// Nodes are mutated in place by SetRate, SetConfiguration and
// SetRateAndConfiguration. A tree must only be mutated from one goroutine.
type Node struct {
	planner *Planner
	parent  *Node

	// Context children are built with; banned includes this node's recipe
	ctx buildContext

	// Item this node produces; empty for a multi-result recipe node
	product string

	// Recipe producing the item; nil for raw materials
	recipe *catalog.Recipe

	// Machine configuration; nil for raw materials and failed branches
	config *Configuration

	// Items per second (NaN for recipe-only nodes)
	rate float64

	// Recipe cycles per second
	recipeRate float64

	// Number of machines needed to sustain recipeRate
	machineCount float64

	// Exists to satisfy a parent's fuel demand
	fuel bool

	// Root of a fuel subtree solved by the fixed point
	fuelRoot        bool
	fuelBase        float64
	selfConsumption float64

	// Fuel this node burns of the fuel its subtree produces
	selfFuel float64

	// Whether ingredient and fuel children are built
	expand   bool
	children map[string]*Node

	// Branch failure, if any; failed nodes have no children
	err error
}

// Product returns the produced item id, empty for recipe-only nodes
func (n *Node) Product() string { return n.product }

// HasProduct reports whether the node tracks a single item
func (n *Node) HasProduct() bool { return n.product != "" }

// Recipe returns the chosen recipe, nil for raw materials
func (n *Node) Recipe() *catalog.Recipe { return n.recipe }

// Configuration returns the machine configuration, nil when there is none
func (n *Node) Configuration() *Configuration { return n.config }

// Rate returns the item rate in items per second (NaN for recipe-only nodes)
func (n *Node) Rate() float64 { return n.rate }

// RecipeRate returns the recipe rate in cycles per second
func (n *Node) RecipeRate() float64 { return n.recipeRate }

// MachineCount returns the number of machines required
func (n *Node) MachineCount() float64 { return n.machineCount }

// IsFuel reports whether the node exists to satisfy fuel demand
func (n *Node) IsFuel() bool { return n.fuel }

// FuelContext returns the fuel whose production subtree contains the node
func (n *Node) FuelContext() string { return n.ctx.fuelContext }

// SelfConsumption returns k, the fraction of a solved fuel's output its own
// production burns. Zero for nodes that are not fuel roots.
func (n *Node) SelfConsumption() float64 { return n.selfConsumption }

// FuelBase returns the external demand a fuel root was solved for
func (n *Node) FuelBase() float64 { return n.fuelBase }

// IsFuelRoot reports whether the node roots a solved fuel subtree
func (n *Node) IsFuelRoot() bool { return n.fuelRoot }

// IsRaw reports whether the node is a raw material leaf
func (n *Node) IsRaw() bool { return n.recipe == nil }

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Err returns this node's branch failure, if any
func (n *Node) Err() error { return n.err }

// Parent returns the parent node, nil for roots
func (n *Node) Parent() *Node { return n.parent }

// ItemsPerMachinePerSecond returns the output of one machine, 0 without a machine
func (n *Node) ItemsPerMachinePerSecond() float64 {
	if n.recipe == nil || n.config == nil || n.product == "" {
		return 0
	}
	seconds := n.recipe.TimeIn(n.config.Machine(), n.config.SpeedMultiplier())
	return n.recipe.ResultQuantity(n.product) * n.config.ProductivityMultiplier() / seconds
}

// ChildKeys returns child keys: ingredients sorted, then the fuel child
func (n *Node) ChildKeys() []string {
	keys := make([]string, 0, len(n.children))
	var fuelKeys []string
	for key := range n.children {
		if strings.HasPrefix(key, FuelKeyPrefix) {
			fuelKeys = append(fuelKeys, key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sort.Strings(fuelKeys)
	return append(keys, fuelKeys...)
}

// Children returns the child nodes in ChildKeys order
func (n *Node) Children() []*Node {
	keys := n.ChildKeys()
	result := make([]*Node, len(keys))
	for i, key := range keys {
		result[i] = n.children[key]
	}
	return result
}

// Child returns the child for an ingredient item or a FuelKeyPrefix key
func (n *Node) Child(key string) (*Node, bool) {
	child, ok := n.children[key]
	return child, ok
}

// FuelChild returns the synthetic fuel child, if the machine burns fuel
func (n *Node) FuelChild() (*Node, bool) {
	if n.config == nil || !n.config.RequiresFuel() {
		return nil, false
	}
	return n.Child(FuelKeyPrefix + n.config.Fuel())
}

// Find follows a path of child keys from this node
func (n *Node) Find(path []string) (*Node, bool) {
	current := n
	for _, key := range path {
		next, ok := current.children[key]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Walk visits the subtree in pre-order
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}

// CountNodes returns the number of nodes in the subtree
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// TotalDepth returns the maximum depth of the subtree
func (n *Node) TotalDepth() int {
	maxChildDepth := 0
	for _, child := range n.children {
		if d := child.TotalDepth(); d > maxChildDepth {
			maxChildDepth = d
		}
	}
	return maxChildDepth + 1
}

// Errors collects every branch failure in the subtree
func (n *Node) Errors() []error {
	var errs []error
	n.Walk(func(node *Node) {
		if node.err != nil {
			errs = append(errs, node.err)
		}
	})
	return errs
}

// SetRate recomputes this node for a new rate and cascades to every child.
// For recipe-only nodes the rate is in cycles per second.
func (n *Node) SetRate(rate float64) {
	n.apply(rate)
}

// SetConfiguration swaps the machine configuration and recomputes this node's
// machine count. Child rates are left as they are; use SetRateAndConfiguration
// to refresh them in the same pass. That includes the fuel child of a burner,
// whose demand follows the machine count and stays stale until the next
// SetRate, so callers editing burners should prefer SetRateAndConfiguration.
func (n *Node) SetConfiguration(config *Configuration) error {
	if err := n.checkConfiguration(config); err != nil {
		return err
	}
	n.config = config
	n.clearConfigurationError()
	n.recompute()
	return nil
}

// SetRateAndConfiguration swaps the configuration and applies the rate in one
// pass, rebuilding the fuel child when the fuel requirement changed. When the
// node lies inside a solved fuel subtree the loop is solved again.
func (n *Node) SetRateAndConfiguration(rate float64, config *Configuration) error {
	if err := n.checkConfiguration(config); err != nil {
		return err
	}
	n.config = config
	n.clearConfigurationError()
	n.apply(rate)

	if root := n.enclosingFuelRoot(); root != nil {
		root.solve(root.fuelBase)
	}
	return nil
}

func (n *Node) checkConfiguration(config *Configuration) error {
	if n.recipe == nil {
		return shared.NewValidationError("configuration", fmt.Sprintf("%s is a raw material and has no machine", n.product))
	}
	if config == nil {
		return shared.NewValidationError("configuration", "configuration cannot be nil")
	}
	return n.planner.validate(n.recipe, config)
}

func (n *Node) clearConfigurationError() {
	var noMachine *NoCompatibleMachineError
	var noFuel *UnknownFuelError
	if errors.As(n.err, &noMachine) || errors.As(n.err, &noFuel) {
		n.err = nil
	}
}

// apply sets the rate, recomputes machines and cascades to children
func (n *Node) apply(rate float64) {
	n.setRates(rate)
	n.recompute()
	n.updateChildren()
}

func (n *Node) setRates(rate float64) {
	rate = sanitizeRate(rate)

	if n.product == "" {
		n.rate = math.NaN()
		n.recipeRate = rate
		return
	}

	n.rate = rate
	n.recipeRate = 0
	if n.recipe != nil {
		if qty := n.recipe.ResultQuantity(n.product); qty > 0 {
			n.recipeRate = rate / qty
		}
	}
}

// recompute derives the machine count (and own-fuel burn inside a fuel subtree)
func (n *Node) recompute() {
	n.machineCount = 0
	n.selfFuel = 0
	if n.recipe == nil || n.config == nil {
		return
	}

	seconds := n.recipe.TimeIn(n.config.Machine(), n.config.SpeedMultiplier())
	count := seconds * n.recipeRate / n.config.ProductivityMultiplier()
	if math.IsNaN(count) || count < 0 {
		count = 0
	}
	n.machineCount = count

	if n.ctx.fuelContext != "" && n.config.RequiresFuel() && n.config.Fuel() == n.ctx.fuelContext {
		n.selfFuel = n.fuelDemand()
	}
}

// fuelDemand is the fuel items per second burned by this node's machines
func (n *Node) fuelDemand() float64 {
	value, ok := n.planner.catalog.FuelValue(n.config.Fuel())
	if !ok || value <= 0 {
		return 0
	}
	machine := n.config.Machine()
	return n.machineCount * machine.Energy * n.config.EfficiencyMultiplier() / (value * machine.Efficiency())
}

func (n *Node) updateChildren() {
	if !n.expand || n.recipe == nil || n.config == nil || n.err != nil {
		return
	}

	productivity := n.config.ProductivityMultiplier()
	for _, item := range n.recipe.IngredientIDs() {
		childRate := n.recipeRate * n.recipe.IngredientQuantity(item) / productivity
		if child, ok := n.children[item]; ok {
			child.SetRate(childRate)
			continue
		}
		n.children[item] = n.planner.newItemNode(n, item, childRate, n.ctx, false)
	}

	n.updateFuelChild()
}

func (n *Node) updateFuelChild() {
	wanted := ""
	if n.config.RequiresFuel() {
		wanted = FuelKeyPrefix + n.config.Fuel()
	}
	for key := range n.children {
		if strings.HasPrefix(key, FuelKeyPrefix) && key != wanted {
			delete(n.children, key)
		}
	}
	if wanted == "" {
		return
	}

	fuel := n.config.Fuel()
	// Burning the fuel this subtree produces is accounted for by the loop solver
	if fuel == n.ctx.fuelContext {
		return
	}

	demand := n.fuelDemand()
	if child, ok := n.children[wanted]; ok {
		child.setFuelBase(demand)
		return
	}
	n.children[wanted] = n.planner.newFuelNode(n, fuel, demand, n.ctx)
}

func sanitizeRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return rate
}

// exclusion is an immutable id set; with returns a copy
type exclusion map[string]struct{}

func (e exclusion) has(id string) bool {
	_, ok := e[id]
	return ok
}

func (e exclusion) with(id string) exclusion {
	next := make(exclusion, len(e)+1)
	for k := range e {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	return next
}

// buildContext travels down the tree during construction
type buildContext struct {
	// Recipes already used on the path from the root
	banned exclusion

	// Fuel produced by the enclosing fuel subtree, empty outside one
	fuelContext string

	// Fuels whose loops are being solved above this point
	solving exclusion
}
