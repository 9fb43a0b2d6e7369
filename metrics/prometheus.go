package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram

	defaultReadTimeout = 5 * time.Second
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	sessionCreationCounter *prometheus.CounterVec
	validityCheckCounter   *prometheus.CounterVec
	invalidationCounter    *prometheus.CounterVec
	chainRequestTime       *prometheus.HistogramVec
	cachedKeysGauge        prometheus.Gauge
)

// abstract prometheus types.
type instrument int

type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures a new instrument and registers it.
func AddInstrument(reg prometheus.Registerer, t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := reg.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

// Setup registers the instruments. Until it is called, recording a
// measure is a no-op.
func Setup(reg prometheus.Registerer) error {
	h, err := AddInstrument(reg, Counter, "sessions_created_total",
		Namespace(namespace),
		Vectors("outcome"),
		Help("Number of session creations, by outcome"),
	)
	if err != nil {
		return err
	}
	if sessionCreationCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "validity_checks_total",
		Namespace(namespace),
		Vectors("status", "valid"),
		Help("Number of on-chain validity checks, by reported status"),
	)
	if err != nil {
		return err
	}
	if validityCheckCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "invalidations_total",
		Namespace(namespace),
		Vectors("reason"),
		Help("Number of stored sessions discarded, by reason"),
	)
	if err != nil {
		return err
	}
	if invalidationCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Histogram, "chain_request_seconds",
		Namespace(namespace),
		Vectors("method"),
		Buckets([]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}),
		Help("Time spent in requests to the chain"),
	)
	if err != nil {
		return err
	}
	if chainRequestTime, err = h.HistogramVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Gauge, "cached_encryption_keys",
		Namespace(namespace),
		Help("Number of encryption keys held in memory"),
	)
	if err != nil {
		return err
	}
	if cachedKeysGauge, err = h.Gauge(); err != nil {
		return err
	}

	return nil
}

// Serve exposes the default registry until the context is cancelled.
func Serve(ctx context.Context, log *zap.Logger, conf Config) error {
	if !conf.Enabled {
		return nil
	}

	if err := Setup(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("could not set up metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	server := &http.Server{
		Addr:              conf.Address,
		Handler:           mux,
		ReadHeaderTimeout: conf.ReadTimeout.Get(),
	}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			log.Warn("could not stop the metrics server", zap.Error(err))
		}
	}()

	log.Info("metrics server started", zap.String("address", conf.Address), zap.String("path", conf.Path))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("the metrics server stopped: %w", err)
	}
	return nil
}

// SessionCreated records the outcome of a session creation.
func SessionCreated(success bool) {
	if sessionCreationCounter == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	sessionCreationCounter.WithLabelValues(outcome).Inc()
}

// ValidityChecked records the status reported by the chain. A failed query
// is reported with the "unknown" status.
func ValidityChecked(status string, valid bool) {
	if validityCheckCounter == nil {
		return
	}
	validityCheckCounter.WithLabelValues(status, fmt.Sprintf("%t", valid)).Inc()
}

// SessionInvalidated records the reason a stored session is discarded.
func SessionInvalidated(reason string) {
	if invalidationCounter == nil {
		return
	}
	invalidationCounter.WithLabelValues(reason).Inc()
}

// StartChainRequest returns the function to call once the request is done.
func StartChainRequest(method string) func() {
	startTime := time.Now()
	return func() {
		if chainRequestTime == nil {
			return
		}
		chainRequestTime.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}
}

// EncryptionKeysCached records the number of keys held in memory.
func EncryptionKeysCached(count int) {
	if cachedKeysGauge == nil {
		return
	}
	cachedKeysGauge.Set(float64(count))
}
