//go:build integration

package google

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"monotributo/internal/ledger"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ReadAndAppend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" &&
		os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	t.Run("FirstSheet", func(t *testing.T) {
		table, err := client.FirstSheet(ctx)
		if err != nil {
			t.Fatalf("FirstSheet: %v", err)
		}
		t.Logf("Read %d rows, header %v", len(table), table.Header())
	})

	t.Run("AppendSummary", func(t *testing.T) {
		ref, err := client.AppendSummary(ctx, ledger.Summary{
			ClientID:   "integration-test",
			ClientName: "Integration Test",
			Category:   "A",
			Totals:     ledger.Totals{SalesTotal: decimal.NewFromInt(1)},
		})
		if err != nil {
			t.Fatalf("AppendSummary: %v", err)
		}
		t.Logf("Appended at %s", ref)
	})
}
