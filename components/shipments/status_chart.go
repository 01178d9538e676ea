package shipments

import (
	"bytes"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "280px"

// StatusChart renders the per-tab record counts as a server-side bar chart.
type StatusChart struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// StatusChartOption customizes chart rendering.
type StatusChartOption func(*StatusChart)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) StatusChartOption {
	return func(c *StatusChart) {
		c.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) StatusChartOption {
	return func(c *StatusChart) {
		c.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) StatusChartOption {
	return func(c *StatusChart) {
		c.assetsHost = host
	}
}

// NewStatusChart builds a chart renderer with a five minute cache.
func NewStatusChart(options ...StatusChartOption) *StatusChart {
	c := &StatusChart{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Render returns chart HTML for the counts.
func (c *StatusChart) Render(title string, counts []StatusCount) (string, error) {
	render := func() (string, error) {
		return c.render(title, counts)
	}
	if c.cache == nil {
		return render()
	}
	return c.cache.GetOrRender("status:"+countsHash(title, counts), render)
}

func (c *StatusChart) render(title string, counts []StatusCount) (string, error) {
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, count := range counts {
		labels[i] = count.Tab.Label()
		data[i] = opts.BarData{Name: string(count.Status), Value: count.Count}
	}

	initOpts := opts.Initialization{
		Theme:  c.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Shipments", data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
