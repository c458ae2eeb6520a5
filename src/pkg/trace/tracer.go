// Package trace records OpenTelemetry spans of a run and exports them as a
// performance report.
package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.WithField("package", "trace")

const (
	ServiceName = "changelog-gate"
	ReportFile  = "performance-report.json"
)

var (
	mu       sync.Mutex
	tracer   trace.Tracer
	recorder *SpanRecorder
)

// SpanRecorder collects finished spans
type SpanRecorder struct {
	mu    sync.Mutex
	spans []spanRecord
}

type spanRecord struct {
	Name       string
	Start      time.Time
	End        time.Time
	SpanID     string
	ParentID   string
	Attributes map[string]string
}

// SpanInfo is one node of the exported span tree
type SpanInfo struct {
	Name       string            `json:"name"`
	DurationMs float64           `json:"durationMs"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []SpanInfo        `json:"children,omitempty"`
}

// PerformanceReport is written to performance-report.json
type PerformanceReport struct {
	Service         string     `json:"service"`
	Spans           []SpanInfo `json:"spans"`
	TotalDurationMs float64    `json:"totalDurationMs"`
	Timestamp       string     `json:"timestamp"`
}

// InitTracer installs a recording tracer provider. The returned shutdown
// function flushes the provider and writes the report to outDir.
func InitTracer(enabled bool, outDir string) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	rec := &SpanRecorder{}
	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(&recordingSpanProcessor{recorder: rec}),
	)
	otel.SetTracerProvider(tp)

	mu.Lock()
	tracer = tp.Tracer(ServiceName)
	recorder = rec
	mu.Unlock()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracer provider")
		}
		if err := rec.Export(outDir); err != nil {
			logger.WithError(err).Warn("Failed to export performance report")
		}

		mu.Lock()
		tracer, recorder = nil, nil
		mu.Unlock()
	}
	return shutdown, nil
}

// StartSpan starts a span; without an installed tracer it returns the span
// already carried by ctx.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	mu.Lock()
	t := tracer
	mu.Unlock()
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

type recordingSpanProcessor struct {
	recorder *SpanRecorder
}

func (p *recordingSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *recordingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	parentID := ""
	if s.Parent().IsValid() {
		parentID = s.Parent().SpanID().String()
	}
	var attrs map[string]string
	for _, kv := range s.Attributes() {
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	p.recorder.mu.Lock()
	defer p.recorder.mu.Unlock()
	p.recorder.spans = append(p.recorder.spans, spanRecord{
		Name:       s.Name(),
		Start:      s.StartTime(),
		End:        s.EndTime(),
		SpanID:     s.SpanContext().SpanID().String(),
		ParentID:   parentID,
		Attributes: attrs,
	})
}

func (p *recordingSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingSpanProcessor) ForceFlush(context.Context) error { return nil }

// Report builds the performance report from the recorded spans
func (r *SpanRecorder) Report() PerformanceReport {
	r.mu.Lock()
	records := append([]spanRecord(nil), r.spans...)
	r.mu.Unlock()

	roots := buildHierarchy(records)
	total := 0.0
	for _, s := range roots {
		total += s.DurationMs
	}
	return PerformanceReport{
		Service:         ServiceName,
		Spans:           roots,
		TotalDurationMs: total,
		Timestamp:       time.Now().Format(time.RFC3339Nano),
	}
}

// Export writes the report to outDir. Nothing is written when no span ended.
func (r *SpanRecorder) Export(outDir string) error {
	r.mu.Lock()
	empty := len(r.spans) == 0
	r.mu.Unlock()
	if empty || outDir == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(r.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	reportPath := filepath.Join(outDir, ReportFile)
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.WithField("filePath", reportPath).Info("Written performance report")
	return nil
}

// buildHierarchy nests spans under their parents. Spans whose parent was not
// recorded become roots. Siblings are ordered by start time.
func buildHierarchy(records []spanRecord) []SpanInfo {
	children := make(map[string][]spanRecord)
	known := make(map[string]bool, len(records))
	for _, rec := range records {
		known[rec.SpanID] = true
	}

	var roots []spanRecord
	for _, rec := range records {
		if rec.ParentID == "" || !known[rec.ParentID] {
			roots = append(roots, rec)
			continue
		}
		children[rec.ParentID] = append(children[rec.ParentID], rec)
	}

	var build func(recs []spanRecord) []SpanInfo
	build = func(recs []spanRecord) []SpanInfo {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Start.Before(recs[j].Start) })
		out := make([]SpanInfo, 0, len(recs))
		for _, rec := range recs {
			out = append(out, SpanInfo{
				Name:       rec.Name,
				DurationMs: float64(rec.End.Sub(rec.Start).Microseconds()) / 1000.0,
				Start:      rec.Start.Format(time.RFC3339Nano),
				End:        rec.End.Format(time.RFC3339Nano),
				Attributes: rec.Attributes,
				Children:   build(children[rec.SpanID]),
			})
		}
		return out
	}
	return build(roots)
}
