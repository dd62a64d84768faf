// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/slukits/gospec"
	"github.com/slukits/gospec/pkg/path"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type observer struct {
	Suite
	fx Fixtures[*fixture]
}

type fixture struct {
	exporter *tracetest.InMemoryExporter
	obs      *Observer
}

func (s *observer) SetUp(t *T) {
	t.Parallel()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	s.fx.Set(t, &fixture{
		exporter: exporter,
		obs: New(prometheus.NewRegistry(),
			WithTracer(tp.Tracer("test"))),
	})
}

func (s *observer) TearDown(t *T) { s.fx.Del(t) }

func attrs(kv []attribute.KeyValue) map[string]interface{} {
	mm := map[string]interface{}{}
	for _, a := range kv {
		mm[string(a.Key)] = a.Value.AsInterface()
	}
	return mm
}

func twoTests(oo ...path.Option) *path.Suite {
	return path.NewFunSpec("two", func(s *path.FunSpec) {
		s.It("t1", func(t *T) {})
		s.It("t2", func(t *T) {})
	}, oo...)
}

func (s *observer) Spans_a_discovery_with_a_child_per_construction(t *T) {
	fx := s.fx.Get(t)
	_, err := twoTests(path.WithObserver(fx.obs)).TestNames()
	t.FatalOn(err)

	spans := fx.exporter.GetSpans()
	t.FatalIfNot(t.Eq(3, len(spans)))
	discovery := spans[2]
	t.Eq("discover two", discovery.Name)
	t.Eq(int64(2), attrs(discovery.Attributes)["gospec.constructions"])
	for i, target := range []string{"root", "1"} {
		t.Eq("construct two", spans[i].Name)
		t.Eq(discovery.SpanContext.SpanID(), spans[i].Parent.SpanID())
		t.Eq(target, attrs(spans[i].Attributes)["gospec.target"])
		t.Eq(int64(i+1), attrs(spans[i].Attributes)["gospec.construction"])
	}
}

func (s *observer) Counts_constructions_and_discoveries(t *T) {
	fx := s.fx.Get(t)
	_, err := twoTests(path.WithObserver(fx.obs)).TestNames()
	t.FatalOn(err)
	t.Eq(2.0, testutil.ToFloat64(
		fx.obs.constructions.WithLabelValues("two")))
	t.Eq(1, testutil.CollectAndCount(fx.obs.durations))
}

func (s *observer) Marks_a_failed_discovery_as_error(t *T) {
	fx := s.fx.Get(t)
	suite := path.NewFunSpec("failing", func(s *path.FunSpec) {
		s.It("same", func(t *T) {})
		s.It("same", func(t *T) {})
	}, path.WithObserver(fx.obs))
	_, err := suite.TestNames()
	t.True(err != nil)
	spans := fx.exporter.GetSpans()
	t.FatalIfNot(t.Eq(3, len(spans)))
	t.Eq(codes.Error, spans[1].Status.Code)
	t.Eq(codes.Error, spans[2].Status.Code)
	t.Eq(0, len(fx.obs.discoveries))
}

func (s *observer) Ends_open_spans_of_an_aborted_discovery(t *T) {
	fx := s.fx.Get(t)
	suite := path.NewFunSpec("aborting", func(s *path.FunSpec) {
		s.It("aborts", func(t *T) { panic(AbortRun(nil)) })
	}, path.WithObserver(fx.obs))
	t.Panics(func() { suite.TestNames() })
	spans := fx.exporter.GetSpans()
	t.FatalIfNot(t.Eq(2, len(spans)))
	t.Eq(codes.Error, spans[0].Status.Code)
}

func (s *observer) Fans_notifications_out(t *T) {
	fx := s.fx.Get(t)
	other := New(prometheus.NewRegistry(), WithTracer(
		sdktrace.NewTracerProvider().Tracer("other")),
		WithContext(context.Background()))
	_, err := twoTests(path.WithObserver(
		Observers{fx.obs, other})).TestNames()
	t.FatalOn(err)
	t.Eq(3, len(fx.exporter.GetSpans()))
	t.Eq(2.0, testutil.ToFloat64(
		other.constructions.WithLabelValues("two")))
}

func TestObserver(t *testing.T) { Run(&observer{}, t) }
