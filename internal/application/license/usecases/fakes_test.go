package usecases

import (
	"context"
	"sync"
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/domain/shared/events"
)

type fakeLicenseRepo struct {
	mu        sync.Mutex
	licenses  map[string]*license.License
	upsertErr error
	getErr    error
	deleteErr error
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{licenses: make(map[string]*license.License)}
}

func (r *fakeLicenseRepo) Upsert(_ context.Context, lic *license.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.licenses[lic.PrincipalID()] = lic
	return nil
}

func (r *fakeLicenseRepo) GetByPrincipal(_ context.Context, principalID string) (*license.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	lic, ok := r.licenses[principalID]
	if !ok {
		return nil, license.ErrLicenseNotFound
	}
	return lic, nil
}

func (r *fakeLicenseRepo) Delete(_ context.Context, principalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	_, ok := r.licenses[principalID]
	delete(r.licenses, principalID)
	return ok, nil
}

func (r *fakeLicenseRepo) ListExpired(_ context.Context, asOf time.Time) ([]*license.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*license.License
	for _, lic := range r.licenses {
		if lic.IsExpiredAt(asOf) {
			out = append(out, lic)
		}
	}
	return out, nil
}

type fakeLedger struct {
	mu           sync.Mutex
	remaining    map[string]int
	decrementErr error
	incrementErr error
	increments   int
}

func newFakeLedger(remaining map[string]int) *fakeLedger {
	if remaining == nil {
		remaining = make(map[string]int)
	}
	return &fakeLedger{remaining: remaining}
}

func (l *fakeLedger) Remaining(_ context.Context, issuerID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining[issuerID], nil
}

func (l *fakeLedger) Decrement(_ context.Context, issuerID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.decrementErr != nil {
		return false, l.decrementErr
	}
	if l.remaining[issuerID] <= 0 {
		return false, nil
	}
	l.remaining[issuerID]--
	return true, nil
}

func (l *fakeLedger) Increment(_ context.Context, issuerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.incrementErr != nil {
		return l.incrementErr
	}
	l.remaining[issuerID]++
	l.increments++
	return nil
}

func (l *fakeLedger) Set(_ context.Context, issuerID string, remaining int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[issuerID] = remaining
	return nil
}

type fakeLocator struct {
	refs map[string]string
}

func (f *fakeLocator) Resolve(name string) (string, bool) {
	ref, ok := f.refs[name]
	return ref, ok
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *capturePublisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.DomainEvent(nil), p.events...)
}
