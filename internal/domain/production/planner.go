package production

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// Planner builds production trees from the catalog, asking the resolver for
// a default machine configuration for every recipe it selects.
type Planner struct {
	catalog  *catalog.Catalog
	resolver ConfigurationResolver
}

// NewPlanner creates a planner over a catalog and configuration resolver
func NewPlanner(cat *catalog.Catalog, resolver ConfigurationResolver) *Planner {
	return &Planner{
		catalog:  cat,
		resolver: resolver,
	}
}

// Catalog returns the catalog the planner reads
func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// FromItem builds a tree producing item at rate items per second.
//
// The algorithm:
//  1. Pick the first producing recipe that is neither excluded by the user nor
//     already used on the path from the root
//  2. Without such a recipe, the item is a raw material leaf
//  3. Resolve the machine configuration and derive the machine count
//  4. Build a child per ingredient with a copy of the path's recipe set
//  5. Build a fuel child when the machine burns fuel, solving fuel loops
//
// Branch failures are recorded on the failing node and joined into the
// returned error; the tree is returned alongside so other branches stay usable.
func (p *Planner) FromItem(item string, rate float64) (*Node, error) {
	if !p.catalog.HasItem(item) {
		return nil, &UnknownRecipeOrItemError{ID: item}
	}

	root := p.newItemNode(nil, item, rate, rootContext(), false)
	return root, errors.Join(root.Errors()...)
}

// FromRecipe builds a tree running recipeID at recipeRate cycles per second.
// A recipe with a single result tracks that item; otherwise the node is
// recipe-only and its item rate is NaN.
func (p *Planner) FromRecipe(recipeID string, recipeRate float64) (*Node, error) {
	recipe, ok := p.catalog.Recipe(recipeID)
	if !ok {
		return nil, &UnknownRecipeOrItemError{ID: recipeID}
	}

	ctx := rootContext()
	ctx.banned = ctx.banned.with(recipe.ID())

	n := &Node{
		planner:  p,
		ctx:      ctx,
		recipe:   recipe,
		expand:   true,
		children: make(map[string]*Node),
	}
	p.configure(n)

	rate := sanitizeRate(recipeRate)
	if product, ok := recipe.SoleResult(); ok {
		n.product = product
		rate *= recipe.ResultQuantity(product)
	}
	n.apply(rate)

	return n, errors.Join(n.Errors()...)
}

func rootContext() buildContext {
	return buildContext{
		banned:  exclusion{},
		solving: exclusion{},
	}
}

func (p *Planner) newItemNode(parent *Node, item string, rate float64, ctx buildContext, fuel bool) *Node {
	n := &Node{
		planner:  p,
		parent:   parent,
		ctx:      ctx,
		product:  item,
		fuel:     fuel,
		expand:   true,
		children: make(map[string]*Node),
	}

	n.recipe = p.pickRecipe(item, ctx.banned)
	if n.recipe != nil {
		n.ctx.banned = ctx.banned.with(n.recipe.ID())
		p.configure(n)
	}

	n.apply(rate)
	return n
}

// pickRecipe returns the first usable recipe producing item, nil for raw materials
func (p *Planner) pickRecipe(item string, banned exclusion) *catalog.Recipe {
	for _, r := range p.catalog.RecipesProducing(item) {
		if banned.has(r.ID()) || p.catalog.IsExcluded(r.ID()) {
			continue
		}
		return r
	}
	return nil
}

func (p *Planner) configure(n *Node) {
	config, err := p.resolver.ResolveFor(n.recipe)
	if err == nil {
		err = p.validate(n.recipe, config)
	}
	if err != nil {
		n.err = err
		return
	}
	n.config = config
}

// validate checks that a configuration can run the recipe and burn its fuel
func (p *Planner) validate(recipe *catalog.Recipe, config *Configuration) error {
	machine := config.Machine()
	if !machine.Supports(recipe.Category()) {
		return shared.NewValidationError("configuration",
			fmt.Sprintf("%s cannot craft %s recipes", machine.ID, recipe.Category()))
	}
	if machine.MaxIngredients < recipe.IngredientCount() {
		return shared.NewValidationError("configuration",
			fmt.Sprintf("%s accepts %d ingredients, %s needs %d", machine.ID, machine.MaxIngredients, recipe.ID(), recipe.IngredientCount()))
	}
	if config.RequiresFuel() {
		if _, ok := p.catalog.FuelValue(config.Fuel()); !ok {
			return &UnknownFuelError{Fuel: config.Fuel(), Machine: machine.ID}
		}
	}
	return nil
}
