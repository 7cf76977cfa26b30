package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExportProducts(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", "products"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 13 {
		t.Fatalf("lines: got %d, want 13 (header + 12 products)", len(lines))
	}
}

func TestExportRejectsUnknownView(t *testing.T) {
	rootCmd.SetArgs([]string{"export", "customers"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate(""); err != nil || !d.IsZero() {
		t.Errorf("parseDate(\"\"): got %v, %v", d, err)
	}
	if _, err := parseDate("19/02/2025"); err == nil {
		t.Error("parseDate(19/02/2025): expected error")
	}
	d, err := parseDate("2025-02-19")
	if err != nil || d.Day() != 19 {
		t.Errorf("parseDate(2025-02-19): got %v, %v", d, err)
	}
}

func TestServeRequiresWebhookSecret(t *testing.T) {
	rootCmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); !errors.Is(err, errNoWebhookSecret) {
		t.Fatalf("serve without secret: got %v, want %v", err, errNoWebhookSecret)
	}
}

func TestServeOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    serveOptions
		wantErr bool
	}{
		{"webhook without secret", serveOptions{webhook: true}, true},
		{"webhook with secret", serveOptions{webhook: true, webhookSecret: "whsec"}, false},
		{"webhook disabled", serveOptions{}, false},
		{"price for paid plan", serveOptions{stripePrices: map[string]string{"PRO": "price_1"}}, false},
		{"price for starter", serveOptions{stripePrices: map[string]string{"STARTER": "price_1"}}, true},
		{"price for unknown plan", serveOptions{stripePrices: map[string]string{"GOLD": "price_1"}}, true},
	}
	for _, tt := range tests {
		if err := tt.opts.validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: got %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}

	if (serveOptions{}).processor() != nil {
		t.Error("processor without a key: want nil")
	}
	if (serveOptions{stripeKey: "sk_test"}).processor() == nil {
		t.Error("processor with a key: want Stripe processor")
	}
}
