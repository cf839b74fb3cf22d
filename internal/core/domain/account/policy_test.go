package account

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy should validate: %v", err)
	}
	if p.UniquenessScope != ScopeGlobal {
		t.Errorf("default scope = %q, want global", p.UniquenessScope)
	}
	if p.IdentifierMode != IdentifyByUsername {
		t.Errorf("default mode = %q, want username", p.IdentifierMode)
	}
	if !p.ConfirmationRequired {
		t.Error("confirmation should be required by default")
	}
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	p.UniquenessScope = "tenant"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown scope")
	}

	p = DefaultPolicy()
	p.IdentifierMode = "phone"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown identifier mode")
	}

	p = DefaultPolicy()
	p.TokenTTL = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero TTL")
	}

	p = DefaultPolicy()
	p.MaxUsernameAttempts = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero username attempts")
	}
}

func TestConfirmationTokenState(t *testing.T) {
	now := time.Now()
	tok := ConfirmationToken{ExpiresAt: now.Add(time.Hour)}
	if tok.IsExpired(now) {
		t.Error("token should not be expired before its TTL")
	}
	if !tok.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("token should be expired after its TTL")
	}
	if tok.IsConsumed() {
		t.Error("fresh token should not be consumed")
	}
	tok.ConsumedAt = &now
	if !tok.IsConsumed() {
		t.Error("token with consumed_at should be consumed")
	}
}
