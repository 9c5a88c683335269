package production

import "errors"

// SolveFixedPoint returns the fuel rate r satisfying r = base + r*k, where k
// is the share of each produced fuel unit burned by the fuel's own production.
func SolveFixedPoint(base, k float64) (float64, error) {
	if k >= 1 {
		return 0, &UnsatisfiableFuelLoopError{SelfConsumption: k}
	}
	return sanitizeRate(base) / (1 - k), nil
}

// newFuelNode builds the child supplying demand items/s of fuel to parent.
// The fuel subtree is built once at a provisional rate to measure k, then
// set to the closed-form rate.
func (p *Planner) newFuelNode(parent *Node, fuel string, demand float64, ctx buildContext) *Node {
	if ctx.solving.has(fuel) {
		// Another fuel's subtree burning a fuel already being solved above:
		// a cross-fuel loop has no scalar closed form, so report plain demand.
		leaf := &Node{
			planner:  p,
			parent:   parent,
			ctx:      ctx,
			product:  fuel,
			fuel:     true,
			children: make(map[string]*Node),
		}
		leaf.apply(demand)
		return leaf
	}

	sub := buildContext{
		banned:      exclusion{},
		fuelContext: fuel,
		solving:     ctx.solving.with(fuel),
	}

	provisional := demand
	if !(provisional > 0) {
		provisional = 1
	}

	root := p.newItemNode(parent, fuel, provisional, sub, true)
	root.fuelRoot = true
	root.solve(demand)
	return root
}

// setFuelBase updates a fuel child for a new external demand
func (n *Node) setFuelBase(base float64) {
	if !n.fuelRoot {
		n.apply(base)
		return
	}

	n.fuelBase = sanitizeRate(base)
	var loop *UnsatisfiableFuelLoopError
	if errors.As(n.err, &loop) || n.config == nil {
		n.apply(n.fuelBase)
		return
	}

	rate, _ := SolveFixedPoint(n.fuelBase, n.selfConsumption)
	n.apply(rate)
}

// solve measures k for the current subtree and applies base/(1-k)
func (n *Node) solve(base float64) {
	n.fuelBase = sanitizeRate(base)

	var loop *UnsatisfiableFuelLoopError
	if errors.As(n.err, &loop) {
		n.err = nil
		n.expand = true
	}
	if n.err != nil || n.config == nil {
		n.apply(n.fuelBase)
		return
	}

	if !(n.rate > 0) {
		n.apply(1)
	}
	k := n.subtreeSelfFuel(n.product) / n.rate
	n.selfConsumption = k

	rate, err := SolveFixedPoint(n.fuelBase, k)
	if err != nil {
		n.err = &UnsatisfiableFuelLoopError{Fuel: n.product, SelfConsumption: k}
		n.expand = false
		n.children = make(map[string]*Node)
		n.apply(n.fuelBase)
		return
	}

	n.apply(rate)
}

// subtreeSelfFuel sums the fuel burned inside the subtree producing fuel
func (n *Node) subtreeSelfFuel(fuel string) float64 {
	total := 0.0
	n.Walk(func(node *Node) {
		if node.ctx.fuelContext == fuel {
			total += node.selfFuel
		}
	})
	return total
}

// enclosingFuelRoot returns the root of the solved fuel subtree containing n
func (n *Node) enclosingFuelRoot() *Node {
	fuel := n.ctx.fuelContext
	if fuel == "" {
		return nil
	}
	for m := n; m != nil; m = m.parent {
		if m.fuelRoot && m.product == fuel {
			return m
		}
	}
	return nil
}
