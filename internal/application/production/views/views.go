package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

// NodeView is a production tree node ready for display or transport.
// Rate is nil for recipe-only nodes.
type NodeView struct {
	Key             string     `json:"key" yaml:"key"`
	Item            string     `json:"item,omitempty" yaml:"item,omitempty"`
	Recipe          string     `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Rate            *float64   `json:"rate,omitempty" yaml:"rate,omitempty"`
	RecipeRate      float64    `json:"recipe_rate,omitempty" yaml:"recipe_rate,omitempty"`
	Configuration   string     `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	MachineCount    float64    `json:"machine_count,omitempty" yaml:"machine_count,omitempty"`
	Fuel            bool       `json:"fuel,omitempty" yaml:"fuel,omitempty"`
	Raw             bool       `json:"raw,omitempty" yaml:"raw,omitempty"`
	SelfConsumption float64    `json:"self_consumption,omitempty" yaml:"self_consumption,omitempty"`
	Error           string     `json:"error,omitempty" yaml:"error,omitempty"`
	Text            string     `json:"text" yaml:"text"`
	Children        []NodeView `json:"children,omitempty" yaml:"children,omitempty"`
}

// ItemTotalView is one line of the item totals, split by recipe and configuration when mixed
type ItemTotalView struct {
	Item         string          `json:"item,omitempty" yaml:"item,omitempty"`
	Recipe       string          `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Rate         float64         `json:"rate" yaml:"rate"`
	RecipeRate   float64         `json:"recipe_rate,omitempty" yaml:"recipe_rate,omitempty"`
	MachineCount float64         `json:"machine_count,omitempty" yaml:"machine_count,omitempty"`
	Raw          bool            `json:"raw,omitempty" yaml:"raw,omitempty"`
	Text         string          `json:"text" yaml:"text"`
	Parts        []ItemTotalView `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// MachineTotalView is the machine count of one configuration
type MachineTotalView struct {
	Configuration string             `json:"configuration" yaml:"configuration"`
	Machine       string             `json:"machine" yaml:"machine"`
	Count         float64            `json:"count" yaml:"count"`
	EnergyDraw    float64            `json:"energy_draw,omitempty" yaml:"energy_draw,omitempty"`
	Fuel          string             `json:"fuel,omitempty" yaml:"fuel,omitempty"`
	Text          string             `json:"text" yaml:"text"`
	Parts         []MachineTotalView `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// TotalsView aggregates a whole forest
type TotalsView struct {
	Items        []ItemTotalView    `json:"items" yaml:"items"`
	Machines     []MachineTotalView `json:"machines" yaml:"machines"`
	MachineCount float64            `json:"machine_count" yaml:"machine_count"`
	EnergyDraw   float64            `json:"energy_draw" yaml:"energy_draw"`
}

// CalculationView is a calculation result as returned by every transport
type CalculationView struct {
	ID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	Roots  []NodeView `json:"roots" yaml:"roots"`
	Totals TotalsView `json:"totals" yaml:"totals"`
	Errors []string   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Presenter renders domain trees with catalog display names
type Presenter struct {
	catalog *catalog.Catalog
}

// NewPresenter creates a presenter for cat
func NewPresenter(cat *catalog.Catalog) *Presenter {
	return &Presenter{catalog: cat}
}

// Calculation renders a calculate command's forest, totals and per-target failures
func (p *Presenter) Calculation(resp *commands.CalculateProductionResponse) CalculationView {
	view := p.Forest(resp.Roots)
	view.ID = resp.CalculationID
	for _, f := range resp.Failures {
		view.Errors = append(view.Errors, fmt.Sprintf("%s: %v", f.Target.ID, f.Err))
	}
	return view
}

// Forest renders trees and aggregates them
func (p *Presenter) Forest(roots []*production.Node) CalculationView {
	view := CalculationView{
		Roots:  make([]NodeView, 0, len(roots)),
		Totals: p.Totals(production.Aggregate(roots)),
	}
	for _, root := range roots {
		view.Roots = append(view.Roots, p.Node(rootKey(root), root))
	}
	return view
}

func rootKey(n *production.Node) string {
	if n.HasProduct() {
		return n.Product()
	}
	return n.Recipe().ID()
}

// Node renders n and its subtree; key is n's child key in its parent
func (p *Presenter) Node(key string, n *production.Node) NodeView {
	view := NodeView{
		Key:             key,
		Item:            n.Product(),
		RecipeRate:      utils.FiniteOr(n.RecipeRate(), 0),
		MachineCount:    utils.FiniteOr(n.MachineCount(), 0),
		Fuel:            n.IsFuel(),
		Raw:             n.IsRaw(),
		SelfConsumption: n.SelfConsumption(),
		Text:            p.NodeText(n),
	}
	if n.HasProduct() {
		rate := utils.FiniteOr(n.Rate(), 0)
		view.Rate = &rate
	}
	if r := n.Recipe(); r != nil {
		view.Recipe = r.ID()
	}
	if c := n.Configuration(); c != nil {
		view.Configuration = c.String()
	}
	if err := n.Err(); err != nil {
		view.Error = err.Error()
	}
	for _, childKey := range n.ChildKeys() {
		child, _ := n.Child(childKey)
		view.Children = append(view.Children, p.Node(childKey, child))
	}
	return view
}

// NodeText describes a node in one line, e.g.
// "Iron gear wheel at 4 items/s requires 2 Assembling machine 2"
func (p *Presenter) NodeText(n *production.Node) string {
	var b strings.Builder
	switch {
	case !n.HasProduct():
		fmt.Fprintf(&b, "%s at %s/s", p.catalog.RecipeName(n.Recipe()), utils.FormatPlural(n.RecipeRate(), "cycle"))
	case n.IsRaw():
		label := "Raw: "
		if n.IsFuel() {
			label = "Fuel: "
		}
		fmt.Fprintf(&b, "%s%s at %s/s", label, p.catalog.Name(n.Product()), utils.FormatPlural(n.Rate(), "item"))
	default:
		if n.IsFuel() {
			b.WriteString("Fuel: ")
		}
		fmt.Fprintf(&b, "%s at %s/s", p.catalog.Name(n.Product()), utils.FormatPlural(n.Rate(), "item"))
		if p.catalog.HasMultipleRecipes(n.Product()) {
			fmt.Fprintf(&b, " (using %s at %s/s)", p.catalog.RecipeName(n.Recipe()), utils.FormatPlural(n.RecipeRate(), "cycle"))
		}
	}

	if c := n.Configuration(); c != nil {
		fmt.Fprintf(&b, " requires %s %s%s", utils.FormatNumber(n.MachineCount()), p.catalog.Name(c.Machine().ID), bonusSuffix(c))
		if c.RequiresFuel() {
			fmt.Fprintf(&b, " burning %s", p.catalog.Name(c.Fuel()))
		}
	}
	if n.SelfConsumption() > 0 {
		fmt.Fprintf(&b, " [fuel loop: %s%% of output burned]", utils.FormatNumber(n.SelfConsumption()*100))
	}
	if err := n.Err(); err != nil {
		fmt.Fprintf(&b, " [error: %v]", err)
	}
	return b.String()
}

func bonusSuffix(c *production.Configuration) string {
	if bonus := c.BonusString(); bonus != "" {
		return " (" + bonus + ")"
	}
	return ""
}

// Totals renders the aggregate in first-seen order
func (p *Presenter) Totals(t *production.Totals) TotalsView {
	view := TotalsView{
		Items:        make([]ItemTotalView, 0, len(t.ByItem)),
		Machines:     make([]MachineTotalView, 0, len(t.ByMachine)),
		MachineCount: t.TotalMachineCount(),
		EnergyDraw:   t.TotalEnergyDraw(),
	}
	for _, r := range t.ByItem {
		view.Items = append(view.Items, p.itemTotal(r))
	}
	for _, r := range t.ByMachine {
		view.Machines = append(view.Machines, p.machineTotal(r, true))
	}
	return view
}

func (p *Presenter) itemTotal(r *production.Rollup) ItemTotalView {
	view := ItemTotalView{
		Item:         r.Item(),
		Rate:         r.Rate(),
		RecipeRate:   r.RecipeRate(),
		MachineCount: r.MachineCount(),
	}
	if recipe := r.Recipe(); recipe != nil {
		view.Recipe = recipe.ID()
	}
	view.Raw = r.Kind() == production.ItemBucket && r.Recipe() == nil && !r.IsSplit() && r.MachineCount() == 0

	var b strings.Builder
	switch r.Kind() {
	case production.ItemBucket:
		fmt.Fprintf(&b, "%s at %s/s", p.catalog.Name(r.Item()), utils.FormatPlural(r.Rate(), "item"))
		if recipe := r.Recipe(); recipe != nil && p.catalog.HasMultipleRecipes(r.Item()) {
			fmt.Fprintf(&b, " (using %s at %s/s)", p.catalog.RecipeName(recipe), utils.FormatPlural(r.RecipeRate(), "cycle"))
		}
	case production.RecipeBucket:
		fmt.Fprintf(&b, "%s at %s/s", p.catalog.RecipeName(r.Recipe()), utils.FormatPlural(r.RecipeRate(), "cycle"))
	case production.MachineBucket:
		b.WriteString(p.machineText(r))
	}
	if r.Kind() != production.MachineBucket {
		if c := r.Configuration(); c != nil {
			fmt.Fprintf(&b, " requires %s %s%s", utils.FormatNumber(r.MachineCount()), p.catalog.Name(c.Machine().ID), bonusSuffix(c))
		}
	}
	view.Text = b.String()

	for _, child := range r.Children() {
		part := p.itemTotal(child)
		if child.Kind() == production.RecipeBucket {
			part.Text = "using " + p.catalog.RecipeName(child.Recipe()) + " at " +
				utils.FormatPlural(child.RecipeRate(), "cycle") + "/s"
			if c := child.Configuration(); c != nil {
				part.Text += fmt.Sprintf(" requires %s %s%s", utils.FormatNumber(child.MachineCount()), p.catalog.Name(c.Machine().ID), bonusSuffix(c))
			}
		}
		view.Parts = append(view.Parts, part)
	}
	return view
}

func (p *Presenter) machineTotal(r *production.Rollup, top bool) MachineTotalView {
	view := MachineTotalView{
		Count:      r.MachineCount(),
		EnergyDraw: r.EnergyDraw(),
		Fuel:       r.Fuel(),
		Text:       p.machineText(r),
	}
	if c := r.Configuration(); c != nil {
		view.Configuration = c.String()
		view.Machine = c.Machine().ID
	}
	if top {
		// Burner buckets list one part per fuel
		if children := r.Children(); len(children) > 1 {
			for _, child := range children {
				view.Parts = append(view.Parts, p.machineTotal(child, false))
			}
		}
	}
	return view
}

// machineText follows "<count> <machine> (<bonus>) requires <power>"; burners show their fuel instead
func (p *Presenter) machineText(r *production.Rollup) string {
	c := r.Configuration()
	if c == nil {
		return utils.FormatNumber(r.MachineCount()) + " machines"
	}
	text := fmt.Sprintf("%s %s%s", utils.FormatNumber(r.MachineCount()), p.catalog.Name(c.Machine().ID), bonusSuffix(c))
	switch {
	case c.RequiresFuel():
		if fuel := r.Fuel(); fuel != "" {
			text += " burning " + p.catalog.Name(fuel)
		}
	case c.Machine().Energy >= 1e-4 && math.Abs(r.EnergyDraw()) > 0:
		text += " requires " + utils.FormatEnergy(r.EnergyDraw())
	}
	return text
}
