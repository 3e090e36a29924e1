// Package leads captures marketing leads and newsletter subscriptions.
//
// Both tables are deduplicated by reading before appending. The store has no
// uniqueness constraint, so two concurrent first registrations of the same key
// can both append: delivery is at-least-once and readers tolerate duplicates.
package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

type Service struct {
	store storage.Client
	audit *audit.Service
	now   func() time.Time
}

// NewService creates the lead service. auditSvc may be nil.
func NewService(store storage.Client, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc, now: time.Now}
}

// RegisterLead records a phone number. If an open lead (no name and no email
// yet) exists for the phone, nothing is written and created is false.
func (s *Service) RegisterLead(ctx context.Context, phone string) (lead entities.Lead, created bool, err error) {
	phone = normalizePhone(phone)
	if err := validation.Required("phone", phone); err != nil {
		return entities.Lead{}, false, err
	}

	snap, err := tables.Load(ctx, s.store, tables.Leads)
	if err != nil {
		return entities.Lead{}, false, err
	}
	if i := findOpen(snap, phone); i >= 0 {
		return tables.LeadFromRecord(snap.Record(i)), false, nil
	}

	lead = entities.Lead{Phone: phone, CreatedAt: s.now().UTC()}
	err = tables.AppendWith(ctx, s.store, tables.Leads, snap.Header, tables.LeadToRecord(lead))
	s.audit.LogLead("lead_register", phone, err)
	if err != nil {
		return entities.Lead{}, false, fmt.Errorf("register lead: %w", err)
	}
	return lead, true, nil
}

// CompleteLead fills the profile fields of the open lead for phone.
func (s *Service) CompleteLead(ctx context.Context, phone, name, email, reference string) (entities.Lead, error) {
	phone = normalizePhone(phone)
	if err := validation.Required("phone", phone); err != nil {
		return entities.Lead{}, err
	}
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" && email == "" {
		return entities.Lead{}, apperr.Validation("name", "name or email is required")
	}
	if email != "" {
		if err := validation.Email("email", email); err != nil {
			return entities.Lead{}, err
		}
	}

	snap, err := tables.Load(ctx, s.store, tables.Leads)
	if err != nil {
		return entities.Lead{}, err
	}
	i := findOpen(snap, phone)
	if i < 0 {
		return entities.Lead{}, apperr.NotFound("open lead", phone)
	}

	lead := tables.LeadFromRecord(snap.Record(i))
	lead.Name, lead.Email, lead.Reference = name, email, strings.TrimSpace(reference)
	updates, _ := snap.Header.Update(snap.AbsoluteRow(i), tables.Record{
		"name": lead.Name, "email": lead.Email, "reference": lead.Reference,
	})
	err = s.store.BatchUpdate(ctx, tables.Leads, updates)
	s.audit.LogLead("lead_complete", phone, err)
	if err != nil {
		return entities.Lead{}, fmt.Errorf("complete lead: %w", err)
	}
	return lead, nil
}

// Subscribe adds email to the newsletter unless it is already subscribed.
// Matching is case-insensitive.
func (s *Service) Subscribe(ctx context.Context, email string) (entities.Subscriber, bool, error) {
	email = strings.TrimSpace(email)
	if err := validation.Email("email", email); err != nil {
		return entities.Subscriber{}, false, err
	}

	snap, err := tables.Load(ctx, s.store, tables.Newsletter)
	if err != nil {
		return entities.Subscriber{}, false, err
	}
	if i := snap.Find(func(r tables.Record) bool { return strings.EqualFold(strings.TrimSpace(r["email"]), email) }); i >= 0 {
		return tables.SubscriberFromRecord(snap.Record(i)), false, nil
	}

	sub := entities.Subscriber{Email: email, SubscribedAt: s.now().UTC()}
	err = tables.AppendWith(ctx, s.store, tables.Newsletter, snap.Header, tables.SubscriberToRecord(sub))
	s.audit.LogLead("newsletter_subscribe", email, err)
	if err != nil {
		return entities.Subscriber{}, false, fmt.Errorf("subscribe: %w", err)
	}
	return sub, true, nil
}

func findOpen(snap *tables.Snapshot, phone string) int {
	return snap.Find(func(r tables.Record) bool {
		lead := tables.LeadFromRecord(r)
		return normalizePhone(lead.Phone) == phone && lead.IsOpen()
	})
}

// normalizePhone drops spaces, dashes and parentheses so formatting
// differences do not defeat deduplication.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
