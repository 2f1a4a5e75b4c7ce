package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRequestBypassEvaluatorNilWhenNothingMatches(t *testing.T) {
	if ev := NewRequestBypassEvaluator(RequestBypassConfig{}); ev != nil {
		t.Fatal("expected nil evaluator when no bypass can match")
	}
	if ev := NewRequestBypassEvaluator(RequestBypassConfig{TrustedSourceCIDRs: []string{"not-a-cidr", " "}}); ev != nil {
		t.Fatal("expected nil evaluator when all CIDRs are invalid")
	}
}

func TestBypassMatchesProbePath(t *testing.T) {
	ev := NewRequestBypassEvaluator(RequestBypassConfig{EnableInternalProbeBypass: true})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ok, reason := ev(req)
	if !ok || reason != "internal_probe_path" {
		t.Fatalf("expected probe bypass, got ok=%v reason=%q", ok, reason)
	}
	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	if ok, _ := ev(req); ok {
		t.Fatal("expected non-probe path to not bypass")
	}
}

func TestBypassMatchesTrustedCIDR(t *testing.T) {
	ev := NewRequestBypassEvaluator(RequestBypassConfig{TrustedSourceCIDRs: []string{"203.0.113.0/24"}})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "203.0.113.40:9999"
	ok, reason := ev(req)
	if !ok || reason != "trusted_source_cidr" {
		t.Fatalf("expected trusted source bypass, got ok=%v reason=%q", ok, reason)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments", nil)
	req.RemoteAddr = "198.51.100.7:9999"
	if ok, _ := ev(req); ok {
		t.Fatal("expected untrusted source to not bypass")
	}
}
