package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/config"
	apierrors "github.com/diogo/chatwidget/internal/errors"
)

func TestRunClear(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
		wantOut string
	}{
		{name: "no content", status: 204, wantOut: "Conversation cleared (2 messages)"},
		{name: "ok", status: 200, wantOut: "Conversation cleared"},
		{name: "forbidden", status: 403, wantErr: true, wantOut: "import-cookies"},
		{name: "server error", status: 500, wantErr: true, wantOut: "HTTP Status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useTempHome(t)
			client := &fakeClient{panel: testPanel, clearStatus: tt.status}

			var out bytes.Buffer
			err := runClear(context.Background(), testDeps(client), config.DefaultConfig(), zerolog.Nop(), &out)
			if tt.wantErr {
				if !apierrors.IsStatus(err, tt.status) {
					t.Errorf("expected status %d error, got %v", tt.status, err)
				}
			} else if err != nil {
				t.Fatalf("runClear() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
			if client.clears != 1 {
				t.Errorf("clears = %d, want 1", client.clears)
			}
		})
	}
}

func TestRunClear_NoClearForm(t *testing.T) {
	useTempHome(t)
	panel := strings.Replace(testPanel, `id="clear-form"`, `id="other-form"`, 1)
	client := &fakeClient{panel: panel}

	err := runClear(context.Background(), testDeps(client), config.DefaultConfig(), zerolog.Nop(), &bytes.Buffer{})
	if !apierrors.Is(err, apierrors.ErrFormNotFound) {
		t.Errorf("expected ErrFormNotFound, got %v", err)
	}
	if client.clears != 0 {
		t.Error("nothing should be posted")
	}
}
