package newsletter

import (
	"context"
	"errors"
	"fmt"
	"kadmeia/internal/domain/content"
	domainerr "kadmeia/internal/domain/errors"
	"log"
	"net/mail"
	"strings"
)

var ErrRateLimited = errors.New("rate limited")

// Signup is one form submission. Website is a honeypot field that real
// visitors never see, so any value marks the request as automated.
type Signup struct {
	Email   string
	Website string
	Lang    content.Lang
	IP      string
}

type Outcome int

const (
	OutcomeDropped Outcome = iota
	OutcomeCreated
	OutcomeExisting
)

type Service struct {
	Store   *Store
	Limiter *Limiter
}

// Subscribe validates s and stores it. Honeypot hits are dropped without
// touching the store or the limiter.
func (svc *Service) Subscribe(ctx context.Context, s Signup) (Outcome, error) {
	if strings.TrimSpace(s.Website) != "" {
		log.Printf("[newsletter] honeypot hit from %s", s.IP)
		return OutcomeDropped, nil
	}
	email, err := NormalizeEmail(s.Email)
	if err != nil {
		return OutcomeDropped, err
	}
	ok, err := svc.Limiter.Allow(ctx, s.IP)
	if err != nil {
		return OutcomeDropped, err
	}
	if !ok {
		return OutcomeDropped, ErrRateLimited
	}

	_, created, err := svc.Store.Add(ctx, Subscriber{Email: email, Lang: s.Lang, IP: s.IP})
	if err != nil {
		return OutcomeDropped, err
	}
	if created {
		return OutcomeCreated, nil
	}
	return OutcomeExisting, nil
}

// NormalizeEmail accepts a bare address and returns it lowercased.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 254 {
		return "", fmt.Errorf("%w: email", domainerr.ErrInvalid)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return "", fmt.Errorf("%w: email", domainerr.ErrInvalid)
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 1 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", fmt.Errorf("%w: email", domainerr.ErrInvalid)
	}
	return strings.ToLower(addr.Address), nil
}
