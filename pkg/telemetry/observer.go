// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetry traces and measures the discoveries of path suites.
// An [Observer] passed to a path suite by [path.WithObserver] starts an
// OpenTelemetry span for each discovery with a child span for each of
// its constructions and counts constructions and discovery durations
// for prometheus.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/slukits/gospec/pkg/path"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer an Observer obtains from the
// global tracer provider if none is given.
const TracerName = "github.com/slukits/gospec/pkg/telemetry"

// Observer implements [path.Observer].  It may observe several suites
// discovering concurrently.
type Observer struct {
	mutex         sync.Mutex
	ctx           context.Context
	tracer        trace.Tracer
	discoveries   map[string]*discovery
	constructions *prometheus.CounterVec
	durations     *prometheus.HistogramVec
}

type discovery struct {
	start        time.Time
	ctx          context.Context
	span         trace.Span
	construction trace.Span
}

// Option configures an observer.
type Option func(*Observer)

// WithTracer makes an observer start its spans with given tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Observer) { o.tracer = t }
}

// WithContext makes an observer's discovery spans children of the span
// in given context.
func WithContext(ctx context.Context) Option {
	return func(o *Observer) { o.ctx = ctx }
}

// New returns an observer registering its metrics with given
// registerer which defaults to prometheus' default registerer.  Its
// tracer defaults to the global tracer provider's tracer named
// [TracerName].
func New(reg prometheus.Registerer, oo ...Option) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	o := &Observer{
		ctx:         context.Background(),
		discoveries: map[string]*discovery{},
		constructions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gospec",
			Name:      "constructions_total",
			Help:      "Constructions of path suites by suite.",
		}, []string{"suite"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gospec",
			Name:      "discovery_seconds",
			Help:      "Duration of path suite discoveries by suite.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"suite"}),
	}
	for _, opt := range oo {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(TracerName)
	}
	return o
}

func (o *Observer) ConstructionStarted(suite string, n int, target path.Path) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	d, ok := o.discoveries[suite]
	if !ok {
		d = &discovery{start: time.Now()}
		d.ctx, d.span = o.tracer.Start(o.ctx, "discover "+suite,
			trace.WithAttributes(attribute.String("gospec.suite", suite)))
		o.discoveries[suite] = d
	}
	_, d.construction = o.tracer.Start(d.ctx, "construct "+suite,
		trace.WithAttributes(
			attribute.String("gospec.suite", suite),
			attribute.Int("gospec.construction", n),
			attribute.String("gospec.target", target.String()),
		))
	o.constructions.WithLabelValues(suite).Inc()
}

func (o *Observer) ConstructionFinished(suite string, n int, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	d, ok := o.discoveries[suite]
	if !ok || d.construction == nil {
		return
	}
	end(d.construction, err)
	d.construction = nil
}

func (o *Observer) DiscoveryFinished(suite string, constructions int, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	d, ok := o.discoveries[suite]
	if !ok {
		return
	}
	delete(o.discoveries, suite)
	if d.construction != nil {
		end(d.construction, err)
	}
	d.span.SetAttributes(attribute.Int("gospec.constructions", constructions))
	end(d.span, err)
	o.durations.WithLabelValues(suite).Observe(
		time.Since(d.start).Seconds())
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Observers fans construction notifications out to several observers.
type Observers []path.Observer

func (oo Observers) ConstructionStarted(suite string, n int, target path.Path) {
	for _, o := range oo {
		o.ConstructionStarted(suite, n, target)
	}
}

func (oo Observers) ConstructionFinished(suite string, n int, err error) {
	for _, o := range oo {
		o.ConstructionFinished(suite, n, err)
	}
}

func (oo Observers) DiscoveryFinished(suite string, constructions int, err error) {
	for _, o := range oo {
		o.DiscoveryFinished(suite, constructions, err)
	}
}
