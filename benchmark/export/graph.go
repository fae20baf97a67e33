package export

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/stats"
	"github.com/nvr-ai/tinybench/util"
)

const (
	// DefaultRawGraphTemplate names the sample graph of one unit.
	DefaultRawGraphTemplate = "Raw-{ClassName}-{MethodName}-{Parameter}-{Sorted}.png"
	// DefaultCompareGraphTemplate names the comparison graph of an owner.
	DefaultCompareGraphTemplate = "Compare-{ClassName}.png"

	// images are rendered at 96 dpi
	pixelsPerInch = 96
)

// GraphExporter draws a scatter of every unit's samples and, per owner, a
// comparison of the aggregate per-call time of each operation across
// parameters.
type GraphExporter struct {
	Options
	// Width and Height are the image size in pixels.
	Width  int
	Height int
	// RawTemplate and CompareTemplate are the file name templates.
	RawTemplate     string
	CompareTemplate string
	// Sort orders the samples of raw graphs.
	Sort benchmark.SortDirection
	// ErrorBars overlays the p30..p70 spread on comparison graphs.
	ErrorBars bool
	// Concurrency bounds parallel raw graph rendering; zero means GOMAXPROCS.
	Concurrency int
}

// NewGraphExporter creates a graph exporter with 800x600 images.
func NewGraphExporter(opts Options) *GraphExporter {
	return &GraphExporter{
		Options:         opts,
		Width:           800,
		Height:          600,
		RawTemplate:     DefaultRawGraphTemplate,
		CompareTemplate: DefaultCompareGraphTemplate,
	}
}

// Export implements Exporter by writing raw graphs for every unit followed by
// one comparison graph per owner.
func (g *GraphExporter) Export(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	raw, err := g.ExportRaw(ctx, results)
	if err != nil {
		return raw, err
	}

	compare, err := g.ExportCompare(ctx, results)
	return append(raw, compare...), err
}

// ExportRaw writes one sample graph per unit. Graphs are rendered
// concurrently once measuring is over. On failure the paths of the graphs
// already written are returned with the error.
func (g *GraphExporter) ExportRaw(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	paths := make([]string, len(results.Results))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency())

	for i, res := range results.Results {
		i, res := i, res
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := g.writeRaw(res, results.Config.BatchSize)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}

	err := eg.Wait()
	if err != nil {
		return slices.DeleteFunc(paths, func(p string) bool { return p == "" }), err
	}
	return paths, nil
}

// ExportRawUnit writes the sample graph of one (owner, operation, parameter)
// unit.
func (g *GraphExporter) ExportRawUnit(results *benchmark.RunResults, owner, operation string, parameter any) (string, error) {
	if err := g.validate(); err != nil {
		return "", err
	}

	res, err := results.Find(owner, operation, parameter)
	if err != nil {
		return "", err
	}
	return g.writeRaw(res, results.Config.BatchSize)
}

// ExportCompare writes one comparison graph per owner.
func (g *GraphExporter) ExportCompare(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	written := make([]string, 0)
	for _, owner := range results.Owners() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := g.writeCompare(results, owner)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *GraphExporter) writeRaw(res benchmark.MethodExecutionResults, batchSize int) (string, error) {
	times := g.Sort.Apply(res.PureTimes())
	points := make(plotter.XYs, len(times))
	for i, d := range times {
		points[i].X = float64(i + 1)
		points[i].Y = benchmark.PerCall(d, batchSize)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Raw data. %s", res.Unit)
	p.X.Label.Text = "Run number"
	p.Y.Label.Text = "Time per call, ns"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return "", errors.Wrapf(err, "raw graph of %s", res.Unit)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)

	path, err := g.Path(g.rawTemplate(), util.TemplateValues{
		ClassName:  res.Unit.Owner,
		MethodName: res.Unit.Operation,
		Parameter:  res.Unit.Parameter,
		Sorted:     g.Sort.String(),
	}, RawGraphsDir)
	if err != nil {
		return "", err
	}
	return path, g.save(p, path)
}

func (g *GraphExporter) writeCompare(results *benchmark.RunResults, owner string) (string, error) {
	params := results.Parameters(owner)
	reducer := results.Reducer()
	batch := results.Config.BatchSize

	p := plot.New()
	p.Title.Text = owner
	p.X.Label.Text = "Parameter"
	p.Y.Label.Text = fmt.Sprintf("%s time per call, ns", reducer.Name())
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	labels := make([]string, len(params))
	for i, param := range params {
		labels[i] = util.FormatParameter(param)
		if param == nil {
			labels[i] = noParameter
		}
	}
	p.NominalX(labels...)

	for series, group := range results.ByOperation(owner) {
		points := make(plotter.XYs, 0, len(params))
		spread := make(plotter.YErrors, 0, len(params))

		for x, param := range params {
			res, err := results.Find(owner, group.Operation, param)
			if errors.Is(err, benchmark.ErrNotFound) {
				continue
			}
			if err != nil {
				return "", err
			}

			aggregate, err := res.Aggregate(reducer)
			if err != nil {
				return "", errors.Wrapf(err, "aggregate of %s", res.Unit)
			}
			y := benchmark.PerCall(aggregate, batch)
			points = append(points, plotter.XY{X: float64(x), Y: y})

			if g.ErrorBars {
				low, high, err := percentileSpread(res, batch, y)
				if err != nil {
					return "", err
				}
				spread = append(spread, struct{ Low, High float64 }{Low: low, High: high})
			}
		}

		line, marks, err := plotter.NewLinePoints(points)
		if err != nil {
			return "", errors.Wrapf(err, "comparison series %s.%s", owner, group.Operation)
		}
		line.Color = plotutil.Color(series)
		line.Width = vg.Points(2)
		marks.Color = plotutil.Color(series)
		marks.Shape = plotutil.Shape(series)
		p.Add(line, marks)
		p.Legend.Add(group.Operation, line, marks)

		if g.ErrorBars {
			bars, err := plotter.NewYErrorBars(errorPoints{XYs: points, YErrors: spread})
			if err != nil {
				return "", errors.Wrapf(err, "error bars of %s.%s", owner, group.Operation)
			}
			bars.Color = plotutil.Color(series)
			p.Add(bars)
		}
	}

	path, err := g.Path(g.compareTemplate(), util.TemplateValues{ClassName: owner})
	if err != nil {
		return "", err
	}
	return path, g.save(p, path)
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// percentileSpread returns the distances from y down to p30 and up to p70 of
// the unit's pure times, per call and never negative.
func percentileSpread(res benchmark.MethodExecutionResults, batch int, y float64) (float64, float64, error) {
	p30, err := stats.PercentileOf(res.Metrics, benchmark.PureTimeOf, 30)
	if err != nil {
		return 0, 0, err
	}
	p70, err := stats.PercentileOf(res.Metrics, benchmark.PureTimeOf, 70)
	if err != nil {
		return 0, 0, err
	}

	return max(0, y-benchmark.PerCall(p30, batch)), max(0, benchmark.PerCall(p70, batch)-y), nil
}

func (g *GraphExporter) save(p *plot.Plot, path string) error {
	w := vg.Length(g.Width) * vg.Inch / pixelsPerInch
	h := vg.Length(g.Height) * vg.Inch / pixelsPerInch
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "failed to save graph %s", path)
	}
	return nil
}

func (g *GraphExporter) validate() error {
	if g.Width < 1 || g.Height < 1 {
		return errors.Wrapf(benchmark.ErrConfiguration, "graph size %dx%d must be positive", g.Width, g.Height)
	}
	return nil
}

func (g *GraphExporter) concurrency() int {
	if g.Concurrency > 0 {
		return g.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

func (g *GraphExporter) rawTemplate() string {
	if g.RawTemplate == "" {
		return DefaultRawGraphTemplate
	}
	return g.RawTemplate
}

func (g *GraphExporter) compareTemplate() string {
	if g.CompareTemplate == "" {
		return DefaultCompareGraphTemplate
	}
	return g.CompareTemplate
}
