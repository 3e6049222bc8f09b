package charts

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []string{"Sales", "Expenses", "Profit"}, []Series{
		{Label: "Amount", Values: []float64{120000, 45000, -3000}},
	}, Opts{Title: "Overview"})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 3, strings.Count(out, "<rect"))
	assert.Contains(t, out, "1.2L")
	assert.Contains(t, out, "overview-bar-title")
}

func TestBarsLegendForMultipleSeries(t *testing.T) {
	html, err := Bars(0, 0, []string{"Jan", "Feb"}, []Series{
		{Label: "Sales", Values: []float64{10, 20}},
		{Label: "Expenses", Values: []float64{5, 8}},
	}, Opts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), ">Expenses</text>")
}

func TestBarsValidatesInput(t *testing.T) {
	_, err := Bars(200, 100, nil, []Series{{Values: []float64{1}}}, Opts{})
	require.Error(t, err)
	_, err = Bars(200, 100, []string{"a", "b"}, []Series{{Label: "x", Values: []float64{1}}}, Opts{})
	require.Error(t, err)
	_, err = Bars(40, 40, []string{"a"}, []Series{{Values: []float64{1}}}, Opts{Padding: 30})
	require.Error(t, err)
}

func TestLineProducesPath(t *testing.T) {
	html, err := Line(480, 200, []string{"01 Mar", "02 Mar", "03 Mar"}, Floats([]decimal.Decimal{
		decimal.NewFromInt(100), decimal.NewFromInt(250), decimal.NewFromInt(175),
	}), Opts{Title: "Daily sales", ShowDots: true})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<path")
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, "02 Mar")

	_, err = Line(480, 200, []string{"a"}, nil, Opts{})
	require.Error(t, err)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", FormatTick(0))
	assert.Equal(t, "12.50", FormatTick(12.5))
	assert.Equal(t, "1.5k", FormatTick(1500))
	assert.Equal(t, "2L", FormatTick(200000))
	assert.Equal(t, "1.2Cr", FormatTick(12000000))
}

func TestPlaceholderEscapes(t *testing.T) {
	out := string(Placeholder(0, 0, "No <data>"))
	assert.Contains(t, out, "No &lt;data&gt;")
}
