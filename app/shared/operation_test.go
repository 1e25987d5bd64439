package shared

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

var errExpected = errors.New("expected")

func newTestRunner(reg prometheus.Registerer) *OperationRunner {
	return &OperationRunner{
		Service:  "TestService",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Metrics:  NewPrometheusServiceMetrics(reg, "test"),
		Expected: func(err error) bool { return errors.Is(err, errExpected) },
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		op          func(ctx context.Context) (int, error)
		want        int
		wantErr     string
		wantIs      error
		wantSuccess float64
		wantFailure float64
	}{
		{
			name:        "success",
			op:          func(context.Context) (int, error) { return 7, nil },
			want:        7,
			wantSuccess: 1,
		},
		{
			name:    "expected error is returned unwrapped",
			op:      func(context.Context) (int, error) { return 0, errExpected },
			wantErr: "expected",
			wantIs:  errExpected,
		},
		{
			name:        "unexpected error is wrapped with operation name",
			op:          func(context.Context) (int, error) { return 0, io.ErrUnexpectedEOF },
			wantErr:     "DoThing: unexpected EOF",
			wantIs:      io.ErrUnexpectedEOF,
			wantFailure: 1,
		},
		{
			name:        "panic is recovered",
			op:          func(context.Context) (int, error) { panic("boom") },
			wantErr:     "panic in DoThing: boom",
			wantFailure: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			r := newTestRunner(reg)

			got, err := Run(context.Background(), r, "DoThing", "id-1", tt.op)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)

			m := r.Metrics.(*prometheusServiceMetrics)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.attempts.WithLabelValues("TestService", "DoThing")))
			assert.Equal(t, tt.wantSuccess, testutil.ToFloat64(m.outcomes.WithLabelValues("TestService", "DoThing", "success")))
			assert.Equal(t, tt.wantFailure, testutil.ToFloat64(m.outcomes.WithLabelValues("TestService", "DoThing", "failure")))
		})
	}
}

func TestRunWithoutTracerOrMetrics(t *testing.T) {
	r := &OperationRunner{Service: "Bare"}
	got, err := Run(context.Background(), r, "Op", "", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRunInTxNilDB(t *testing.T) {
	got, err := RunInTx(context.Background(), nil, func(_ context.Context, db bun.IDB) (int, error) {
		assert.Nil(t, db)
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
