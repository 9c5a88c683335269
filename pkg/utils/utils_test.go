package utils_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/pkg/utils"
)

func TestEvaluateExpression(t *testing.T) {
	tests := []struct {
		expression string
		want       float64
	}{
		{"4", 4},
		{"1/60", 1.0 / 60},
		{"2*(3+1)", 8},
		{"2 * 3 + 1", 7},
		{"1 + 2 * 3", 7},
		{"10 - 4 - 3", 3},
		{"12 / 3 / 2", 2},
		{"-3 + 5", 2},
		{"2*-3", -6},
		{"-(1+1)", -2},
		{".5 + 0.25", 0.75},
		{"  ( ( 7 ) )  ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := utils.EvaluateExpression(tt.expression)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateExpression_Errors(t *testing.T) {
	for _, expression := range []string{"", "1+", "(2", "2)", "abc", "1/0", "3 4", "1..2"} {
		t.Run(expression, func(t *testing.T) {
			_, err := utils.EvaluateExpression(expression)
			assert.Error(t, err)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "4", utils.FormatNumber(4))
	assert.Equal(t, "0.6667", utils.FormatNumber(2.0/3.0))
	assert.Equal(t, "13.3333", utils.FormatNumber(40.0/3.0))
	assert.Equal(t, "0", utils.FormatNumber(-0.00001))
	assert.Equal(t, "1.5", utils.FormatNumber(1.50000))
	assert.Equal(t, "NaN", utils.FormatNumber(math.NaN()))
	assert.Equal(t, "∞", utils.FormatNumber(math.Inf(1)))
}

func TestFormatPlural(t *testing.T) {
	assert.Equal(t, "1 item", utils.FormatPlural(1, "item"))
	assert.Equal(t, "1 item", utils.FormatPlural(1.000001, "item"))
	assert.Equal(t, "2 items", utils.FormatPlural(2, "item"))
	assert.Equal(t, "0.5 items", utils.FormatPlural(0.5, "item"))
	assert.Equal(t, "0 items", utils.FormatPlural(0, "item"))
}

func TestFormatEnergy(t *testing.T) {
	tests := []struct {
		watts float64
		want  string
	}{
		{0, "0W"},
		{500, "500W"},
		{150000, "150kW"},
		{1234567, "1.23MW"},
		{999999, "1MW"},
		{2.5e9, "2.5GW"},
		{4e12, "4000GW"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.FormatEnergy(tt.watts))
	}
}

func TestApproxEqual(t *testing.T) {
	assert.True(t, utils.ApproxEqual(0.1+0.2, 0.3, utils.DefaultTolerance))
	assert.False(t, utils.ApproxEqual(1, 1.1, utils.DefaultTolerance))
	assert.Equal(t, 3.0, utils.FiniteOr(math.NaN(), 3))
	assert.Equal(t, 2.0, utils.FiniteOr(2, 3))
}

func TestGenerateIDs(t *testing.T) {
	session := utils.GenerateSessionID("ws")
	assert.True(t, strings.HasPrefix(session, "ws-"))
	assert.Len(t, session, len("ws-")+8)
	assert.NotEqual(t, session, utils.GenerateSessionID("ws"))
	assert.Len(t, utils.GenerateSessionID(""), 8)

	assert.Len(t, utils.GenerateCalculationID(), 36)
}
