package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pitabwire/multilingual/telemetry"
)

const pkg = "multilingual/telemetry_test"

type TelemetrySuite struct {
	suite.Suite
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func TestTelemetrySuite(t *testing.T) {
	suite.Run(t, new(TelemetrySuite))
}

func (s *TelemetrySuite) SetupTest() {
	s.spans = tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans)))

	s.reader = sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(s.reader),
		sdkmetric.WithView(telemetry.Views(pkg)...),
	))
}

func (s *TelemetrySuite) TestSpansCarryStatus() {
	ctx := context.Background()
	tracer := telemetry.NewTracer(pkg)

	okCtx, okSpan := tracer.Start(ctx, "Convert")
	tracer.End(okCtx, okSpan, nil)

	failCtx, failSpan := tracer.Start(ctx, "Save")
	tracer.End(failCtx, failSpan, errors.New("bucket unavailable"))

	ended := s.spans.Ended()
	s.Require().Len(ended, 2)
	s.Equal("Convert", ended[0].Name())
	s.Equal(codes.Ok, ended[0].Status().Code)
	s.Equal("Save", ended[1].Name())
	s.Equal(codes.Error, ended[1].Status().Code)
	s.Equal("bucket unavailable", ended[1].Status().Description)
}

func (s *TelemetrySuite) TestLatencyRecorded() {
	ctx := context.Background()
	tracer := telemetry.NewTracer(pkg)

	for range 3 {
		sCtx, span := tracer.Start(ctx, "Convert")
		tracer.End(sCtx, span, nil)
	}

	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.reader.Collect(ctx, &rm))

	var count uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != pkg+"/latency" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			s.Require().True(ok)
			for _, dp := range hist.DataPoints {
				count += dp.Count
			}
		}
	}
	s.Equal(uint64(3), count)
}

func (s *TelemetrySuite) TestErrorCode() {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "ok"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "deadline", err: context.DeadlineExceeded, want: "deadline exceeded"},
		{name: "other", err: errors.New("boom"), want: "err"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, telemetry.ErrorCode(tc.err))
		})
	}
}
