package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})
	logger.Debug("hidden")
	logger.Info("visible", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level: %s", out)
	}
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "k=v") {
		t.Errorf("missing attributes: %s", out)
	}
	if logger.Component() != ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("fallback component = %q", got.Component())
	}

	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})
	ctx := WithLogger(context.Background(), logger.With(FieldRequestID, "req-1"))
	FromContext(ctx).InfoContext(ctx, "inside")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id not propagated: %s", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentApp, Output: &buf, JSON: true}))
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodPost, "/api/clients/c1/imports?direction=sale", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), `"level":"ERROR"`) || !strings.Contains(buf.String(), `"status_code":500`) {
		t.Errorf("unexpected HTTP line: %s", buf.String())
	}

	buf.Reset()
	sl.LogImport(ctx, "acc@x.com", "c1", "csv", "sale", 3, 2, 1, 0, 0)
	if !strings.Contains(buf.String(), `"duplicates":1`) || !strings.Contains(buf.String(), `"operation":"import"`) {
		t.Errorf("unexpected import line: %s", buf.String())
	}

	buf.Reset()
	sl.LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpUpdate, nil)
	if !strings.Contains(buf.String(), `"error":"disk full"`) {
		t.Errorf("unexpected error line: %s", buf.String())
	}

	buf.Reset()
	fields := NewFields().WithErrorType(ErrorTypeDatabase).WithSheetsRef("sheet-1")
	sl.LogError(ctx, "append failed", errors.New("quota"), ComponentSheets, OpAppend, fields)
	for _, want := range []string{`"error_type":"database_error"`, `"sheets_ref":"sheet-1"`, `"operation":"append"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %s in %s", want, buf.String())
		}
	}
}
