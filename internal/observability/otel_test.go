package observability

import (
	"context"
	"testing"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"go.uber.org/zap"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	conf := config.TracingConfig{Enabled: true, Exporter: "zipkin", ServiceName: "test"}
	if _, err := Init(context.Background(), conf, zap.NewNop()); err == nil {
		t.Error("expected an error for an unknown exporter")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     otlpTarget
		wantErr  bool
	}{
		{endpoint: "localhost:4318", want: otlpTarget{hostPort: "localhost:4318", insecure: true}},
		{endpoint: "https://otel.example.com:4318", want: otlpTarget{hostPort: "otel.example.com:4318"}},
		{endpoint: "https://otel.example.com/", want: otlpTarget{hostPort: "otel.example.com"}},
		{endpoint: "http://collector:4318/custom/v1/traces", want: otlpTarget{hostPort: "collector:4318", path: "/custom/v1/traces", insecure: true}},
		{endpoint: "grpc://collector:4317", wantErr: true},
		{endpoint: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := parseOTLPEndpoint(tt.endpoint)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
