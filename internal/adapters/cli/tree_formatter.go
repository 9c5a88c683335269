package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

const (
	colorRaw   = "\033[32m" // Green
	colorFuel  = "\033[33m" // Yellow
	colorError = "\033[31m" // Red
	colorReset = "\033[0m"
)

// TreeFormatter renders production trees and totals as indented text
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatTree renders one production tree
func (f *TreeFormatter) FormatTree(root views.NodeView) string {
	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// FormatForest renders every root, separated by blank lines
func (f *TreeFormatter) FormatForest(roots []views.NodeView) string {
	trees := make([]string, 0, len(roots))
	for _, root := range roots {
		trees = append(trees, f.FormatTree(root))
	}
	return strings.Join(trees, "\n")
}

func (f *TreeFormatter) formatNode(builder *strings.Builder, node views.NodeView, prefix string, isLast, isRoot bool) {
	var linePrefix string
	switch {
	case isRoot:
		linePrefix = ""
	case isLast:
		linePrefix = prefix + "└── "
	default:
		linePrefix = prefix + "├── "
	}

	builder.WriteString(linePrefix)
	builder.WriteString(f.colorize(node))
	builder.WriteString("\n")

	var childPrefix string
	switch {
	case isRoot:
		childPrefix = ""
	case isLast:
		childPrefix = prefix + "    "
	default:
		childPrefix = prefix + "│   "
	}
	for i, child := range node.Children {
		f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
	}
}

func (f *TreeFormatter) colorize(node views.NodeView) string {
	if !f.useColors {
		return node.Text
	}
	switch {
	case node.Error != "":
		return colorError + node.Text + colorReset
	case node.Raw:
		return colorRaw + node.Text + colorReset
	case node.Fuel:
		return colorFuel + node.Text + colorReset
	default:
		return node.Text
	}
}

// FormatTotals renders item and machine totals with their splits indented
func (f *TreeFormatter) FormatTotals(totals views.TotalsView) string {
	var builder strings.Builder

	builder.WriteString("Items:\n")
	for _, item := range totals.Items {
		fmt.Fprintf(&builder, "  %s\n", item.Text)
		for _, part := range item.Parts {
			fmt.Fprintf(&builder, "    - %s\n", part.Text)
		}
	}

	builder.WriteString("Machines:\n")
	for _, machine := range totals.Machines {
		fmt.Fprintf(&builder, "  %s\n", machine.Text)
		for _, part := range machine.Parts {
			fmt.Fprintf(&builder, "    - %s\n", part.Text)
		}
	}

	fmt.Fprintf(&builder, "Total: %s", utils.FormatPlural(totals.MachineCount, "machine"))
	if totals.EnergyDraw > 0 {
		fmt.Fprintf(&builder, ", %s electricity", utils.FormatEnergy(totals.EnergyDraw))
	}
	builder.WriteString("\n")
	return builder.String()
}
