// Package platform defines narrow interfaces for the systems the spec
// names explicitly out of core (OTP delivery, token issuance, IAP
// billing, marketing broadcast) so C5/C7 depend on an abstraction
// rather than an implementation, the same way the teacher's service
// layer depends on narrow per-consumer Repo interfaces instead of
// concrete repositories.
package platform

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
)

// OTPProvider sends and verifies a one-time phone verification code.
type OTPProvider interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (bool, error)
}

// InMemoryOTPProvider is a dev/local stand-in; it is never a production
// claim, matching the teacher's habit of shipping a working but
// explicitly minimal default wiring alongside narrower interfaces.
type InMemoryOTPProvider struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewInMemoryOTPProvider() *InMemoryOTPProvider {
	return &InMemoryOTPProvider{codes: map[string]string{}}
}

func (p *InMemoryOTPProvider) SendCode(ctx context.Context, phone string) error {
	code, err := randomCode()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.codes[phone] = code
	p.mu.Unlock()
	return nil
}

func (p *InMemoryOTPProvider) VerifyCode(ctx context.Context, phone, code string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	expected, ok := p.codes[phone]
	if !ok {
		return false, nil
	}
	if expected != code {
		return false, nil
	}
	delete(p.codes, phone)
	return true, nil
}

func randomCode() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := (int(b[0])<<16 | int(b[1])<<8 | int(b[2])) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
