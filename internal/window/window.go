// Package window holds the state of the single application window: the city
// entry, the read-only report area, the chart region and the error dialog.
//
// Submit runs the forecast pipeline on its own goroutine and applies the
// result under the window lock, so callers never block on the network.
package window

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"weathercast/internal/models"
	"weathercast/internal/presenter"
	"weathercast/pkg/observe"
)

// ErrBusy is returned by Submit while a previous submission is in flight.
var ErrBusy = errors.New("a forecast request is already in progress")

// Pipeline resolves a city and fetches its forecast.
type Pipeline interface {
	Forecast(ctx context.Context, city string) (*models.Forecast, error)
}

type Config struct {
	Title string
	// ChartHistory is how many charts the chart region keeps; 1 replaces
	// the previous chart on every successful submission.
	ChartHistory int
	Chart        presenter.ChartOptions
}

type ReportArea struct {
	Text     string `json:"text"`
	ReadOnly bool   `json:"read_only"`
}

type ChartWidget struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	SVG       []byte    `json:"-"`
	// Note replaces the chart when the series had nothing to plot.
	Note      string    `json:"note,omitempty"`
}

type ErrorDialog struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// View is a copy of the window state, safe to read without the lock.
type View struct {
	Title      string        `json:"title"`
	City       string        `json:"city"`
	Busy       bool          `json:"busy"`
	Submission string        `json:"submission,omitempty"`
	Report     ReportArea    `json:"report"`
	Charts     []ChartWidget `json:"charts"`
	Dialog     *ErrorDialog  `json:"dialog,omitempty"`
}

type Window struct {
	cfg      Config
	pipeline Pipeline
	l        *observe.Logger
	now      func() time.Time

	mu         sync.Mutex
	city       string
	busy       bool
	submission string
	cancel     context.CancelFunc
	report     ReportArea
	charts     []ChartWidget
	dialog     *ErrorDialog

	wg sync.WaitGroup
}

func New(cfg Config, pipeline Pipeline, l *observe.Logger) *Window {
	if cfg.ChartHistory < 1 {
		cfg.ChartHistory = 1
	}

	return &Window{
		cfg:      cfg,
		pipeline: pipeline,
		l:        l,
		now:      time.Now,
		report:   ReportArea{ReadOnly: true},
	}
}

// Submit starts a forecast for city and returns its submission ID.
func (w *Window) Submit(city string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return "", ErrBusy
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	w.busy = true
	w.city = city
	w.submission = id
	w.cancel = cancel
	w.dialog = nil

	w.l.Info("submission started", map[string]any{"submission": id, "city": city})

	w.wg.Add(1)
	go w.run(ctx, id, city)

	return id, nil
}

func (w *Window) run(ctx context.Context, id, city string) {
	defer w.wg.Done()

	report, chart, err := w.render(ctx, city)

	w.mu.Lock()
	defer w.mu.Unlock()

	cancelled := ctx.Err() != nil
	w.cancel()
	w.busy = false
	w.cancel = nil

	fields := map[string]any{"submission": id, "city": city}

	switch {
	case err != nil && cancelled:
		w.l.Info("submission cancelled", fields)
	case err != nil:
		w.l.Error(err, fields)
		w.dialog = &ErrorDialog{Title: "Error", Message: err.Error()}
	default:
		w.report.Text = report
		w.report.ReadOnly = true
		w.addChart(ChartWidget{ID: id, City: city, CreatedAt: w.now(), SVG: chart.svg, Note: chart.note})
		w.l.Info("submission rendered", fields)
	}
}

type renderedChart struct {
	svg  []byte
	note string
}

// render does all fallible work before the window is touched, so a failure
// leaves the report and chart region as they were. A series with too few
// readings to plot still gets its report and a placeholder chart.
func (w *Window) render(ctx context.Context, city string) (string, renderedChart, error) {
	forecast, err := w.pipeline.Forecast(ctx, city)
	if err != nil {
		return "", renderedChart{}, err
	}

	var chart renderedChart
	chart.svg, err = presenter.RenderChart(forecast, w.cfg.Chart)
	switch {
	case errors.Is(err, presenter.ErrNotEnoughPoints):
		chart.note = err.Error()
	case err != nil:
		return "", renderedChart{}, err
	}

	return presenter.FormatReport(forecast), chart, nil
}

// addChart must be called with w.mu held.
func (w *Window) addChart(c ChartWidget) {
	charts := append(w.charts, c)
	if extra := len(charts) - w.cfg.ChartHistory; extra > 0 {
		charts = append([]ChartWidget(nil), charts[extra:]...)
	}
	w.charts = charts
}

// Cancel aborts the in-flight submission. It reports whether there was one.
func (w *Window) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.busy || w.cancel == nil {
		return false
	}
	w.cancel()
	return true
}

func (w *Window) DismissError() {
	w.mu.Lock()
	w.dialog = nil
	w.mu.Unlock()
}

func (w *Window) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Title:      w.cfg.Title,
		City:       w.city,
		Busy:       w.busy,
		Submission: w.submission,
		Report:     w.report,
		Charts:     append([]ChartWidget(nil), w.charts...),
	}
	if w.dialog != nil {
		d := *w.dialog
		v.Dialog = &d
	}
	return v
}

// Wait blocks until no submission is running.
func (w *Window) Wait() {
	w.wg.Wait()
}

// Close cancels any running submission and waits for it.
func (w *Window) Close() {
	w.Cancel()
	w.Wait()
}
