package receipt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifierDisabledIsNoOp(t *testing.T) {
	v := NewVerifier("")
	in := Result{MerchantName: "Shop", Source: sourceRules}
	out := v.Verify(context.Background(), "raw", in)
	if out.Source != sourceRules {
		t.Fatalf("expected unchanged result, got %+v", out)
	}
}

func TestVerifierSwallowsTransportFailure(t *testing.T) {
	v := NewVerifier("http://127.0.0.1:0/unreachable")
	in := Result{MerchantName: "Shop", Source: sourceRules}
	out := v.Verify(context.Background(), "raw", in)
	if out.Source != sourceRules {
		t.Fatalf("expected fallback to original result, got %+v", out)
	}
}

func TestVerifierSwallowsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL)
	in := Result{MerchantName: "Shop", Source: sourceRules}
	out := v.Verify(context.Background(), "raw", in)
	if out.Source != sourceRules {
		t.Fatalf("expected fallback on 500, got %+v", out)
	}
}

func TestVerifierAppliesSuccessfulCorrection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"merchantName":"Corrected Shop","total":1000}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL)
	in := Result{MerchantName: "Shop", Source: sourceRules}
	out := v.Verify(context.Background(), "raw", in)
	if out.MerchantName != "Corrected Shop" || out.Source != sourceLLMVerified {
		t.Fatalf("expected corrected result, got %+v", out)
	}
}
