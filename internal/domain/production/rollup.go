package production

import (
	"math"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// BucketKind tags what a Rollup aggregates
type BucketKind int

const (
	// ItemBucket totals one item's rate across the forest
	ItemBucket BucketKind = iota
	// RecipeBucket totals one recipe's cycle rate
	RecipeBucket
	// MachineBucket totals the machines of one configuration
	MachineBucket
)

func (k BucketKind) String() string {
	switch k {
	case ItemBucket:
		return "item"
	case RecipeBucket:
		return "recipe"
	case MachineBucket:
		return "machine"
	default:
		return "unknown"
	}
}

// Rollup is an aggregated total. It stays flat while a single recipe or
// configuration contributes; once a second one appears the totals so far are
// demoted into a first child and the newcomer becomes a second child.
type Rollup struct {
	kind BucketKind
	key  string

	item          string
	recipe        *catalog.Recipe
	configuration *Configuration

	rate         float64
	recipeRate   float64
	machineCount float64
	energy       float64

	parts []*Rollup
}

func (r *Rollup) Kind() BucketKind { return r.kind }

// Item returns the item id of an item bucket
func (r *Rollup) Item() string { return r.item }

// Rate returns the total item rate of an item bucket
func (r *Rollup) Rate() float64 { return r.rate }

// RecipeRate returns the total cycle rate
func (r *Rollup) RecipeRate() float64 {
	if r.kind == ItemBucket && len(r.parts) == 1 {
		return r.parts[0].RecipeRate()
	}
	return r.recipeRate
}

// MachineCount returns the total machines across every contributor
func (r *Rollup) MachineCount() float64 { return r.machineCount }

// EnergyDraw returns the total power in watts
func (r *Rollup) EnergyDraw() float64 { return r.energy }

// Recipe returns the recipe when exactly one contributed, nil otherwise
func (r *Rollup) Recipe() *catalog.Recipe {
	switch {
	case r.kind == RecipeBucket:
		return r.recipe
	case r.kind == ItemBucket && len(r.parts) == 1:
		return r.parts[0].recipe
	}
	return nil
}

// Configuration returns the configuration when exactly one contributed, nil otherwise
func (r *Rollup) Configuration() *Configuration {
	switch r.kind {
	case MachineBucket:
		if r.configuration != nil {
			return r.configuration
		}
		if len(r.parts) == 1 {
			return r.parts[0].configuration
		}
	case RecipeBucket:
		if len(r.parts) == 1 {
			return r.parts[0].configuration
		}
	case ItemBucket:
		if len(r.parts) == 1 {
			return r.parts[0].Configuration()
		}
	}
	return nil
}

// Fuel returns the fuel of a burner machine bucket, empty when split by fuel
func (r *Rollup) Fuel() string {
	if r.kind == MachineBucket && len(r.parts) > 1 {
		return ""
	}
	if c := r.Configuration(); c != nil {
		return c.Fuel()
	}
	return ""
}

// Children returns child rollups, nil while the bucket is flat
func (r *Rollup) Children() []*Rollup {
	if r.kind == ItemBucket && len(r.parts) == 1 {
		// Uniform recipe: expose its configuration split, if any
		return r.parts[0].Children()
	}
	if len(r.parts) < 2 {
		return nil
	}
	return append([]*Rollup(nil), r.parts...)
}

// IsSplit reports whether more than one recipe or configuration contributed
func (r *Rollup) IsSplit() bool {
	return len(r.Children()) > 0
}

func (r *Rollup) part(key string, create func() *Rollup) *Rollup {
	for _, p := range r.parts {
		if p.key == key {
			return p
		}
	}
	p := create()
	r.parts = append(r.parts, p)
	return p
}

// Totals is the aggregate of a forest of production trees
type Totals struct {
	// Per-item totals (and recipe buckets for recipe-only roots), first-seen order
	ByItem []*Rollup

	// Per-configuration machine totals, first-seen order
	ByMachine []*Rollup

	items    map[string]*Rollup
	machines map[string]*Rollup
}

// Item returns the rollup for an item id
func (t *Totals) Item(id string) (*Rollup, bool) {
	r, ok := t.items[id]
	return r, ok
}

// Machine returns the rollup for a configuration (fuel ignored)
func (t *Totals) Machine(config *Configuration) (*Rollup, bool) {
	r, ok := t.machines[config.Key()]
	return r, ok
}

// TotalEnergyDraw sums the power of electric machines
func (t *Totals) TotalEnergyDraw() float64 {
	total := 0.0
	for _, m := range t.ByMachine {
		if c := m.anyConfiguration(); c != nil && !c.RequiresFuel() {
			total += m.energy
		}
	}
	return total
}

// TotalMachineCount sums machines of every configuration
func (t *Totals) TotalMachineCount() float64 {
	total := 0.0
	for _, m := range t.ByMachine {
		total += m.machineCount
	}
	return total
}

func (r *Rollup) anyConfiguration() *Configuration {
	if r.configuration != nil {
		return r.configuration
	}
	for _, p := range r.parts {
		if c := p.anyConfiguration(); c != nil {
			return c
		}
	}
	return nil
}

// Aggregate walks every node of every tree once, in pre-order, and totals
// rates per item and machines per configuration. NaN rates count as zero.
func Aggregate(roots []*Node) *Totals {
	t := &Totals{
		items:    make(map[string]*Rollup),
		machines: make(map[string]*Rollup),
	}
	for _, root := range roots {
		if root == nil {
			continue
		}
		root.Walk(t.add)
	}
	return t
}

func (t *Totals) add(n *Node) {
	t.addItem(n)
	t.addMachine(n)
}

func (t *Totals) addItem(n *Node) {
	var bucket *Rollup
	if n.HasProduct() {
		bucket = t.items[n.product]
		if bucket == nil {
			bucket = &Rollup{kind: ItemBucket, key: n.product, item: n.product}
			t.items[n.product] = bucket
			t.ByItem = append(t.ByItem, bucket)
		}
		bucket.rate += finite(n.rate)
	} else {
		key := "recipe:" + n.recipe.ID()
		bucket = t.items[key]
		if bucket == nil {
			bucket = &Rollup{kind: RecipeBucket, key: key, recipe: n.recipe}
			t.items[key] = bucket
			t.ByItem = append(t.ByItem, bucket)
		}
	}

	if n.recipe == nil {
		return
	}

	count := finite(n.machineCount)
	bucket.machineCount += count

	recipeBucket := bucket
	if bucket.kind == ItemBucket {
		recipeBucket = bucket.part(n.recipe.ID(), func() *Rollup {
			return &Rollup{kind: RecipeBucket, key: n.recipe.ID(), recipe: n.recipe}
		})
		recipeBucket.machineCount += count
	}
	recipeBucket.recipeRate += finite(n.recipeRate)

	if n.config == nil {
		return
	}
	machineBucket := recipeBucket.part(n.config.Key(), func() *Rollup {
		return &Rollup{kind: MachineBucket, key: n.config.Key(), configuration: n.config}
	})
	machineBucket.machineCount += count
	machineBucket.energy += n.config.EnergyDraw(count)
}

// addMachine totals machines by configuration; burner buckets split by fuel
func (t *Totals) addMachine(n *Node) {
	if n.config == nil {
		return
	}

	count := finite(n.machineCount)
	energy := n.config.EnergyDraw(count)

	key := n.config.Key()
	bucket := t.machines[key]
	if bucket == nil {
		bucket = &Rollup{kind: MachineBucket, key: key, configuration: n.config}
		t.machines[key] = bucket
		t.ByMachine = append(t.ByMachine, bucket)
	}
	bucket.machineCount += count
	bucket.energy += energy

	byFuel := bucket.part(n.config.Fuel(), func() *Rollup {
		return &Rollup{kind: MachineBucket, key: n.config.Fuel(), configuration: n.config}
	})
	byFuel.machineCount += count
	byFuel.energy += energy
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
