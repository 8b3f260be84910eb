// Package session holds per-user conversation state between updates.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"telegram_docbot/internal/domain"

	"github.com/google/uuid"
)

type FlowKind string

const (
	FlowPurchase FlowKind = "purchase"
	FlowOrder    FlowKind = "order"
	FlowVerify   FlowKind = "verify"
)

// Flow is the active conversation. Each variant carries only its own fields,
// so nothing from an abandoned flow survives into the next one.
type Flow interface {
	Kind() FlowKind
}

// PurchaseFlow waits for the user to type a coin amount
type PurchaseFlow struct{}

func (PurchaseFlow) Kind() FlowKind { return FlowPurchase }

// VerifyFlow waits for the admin to type a payment code
type VerifyFlow struct{}

func (VerifyFlow) Kind() FlowKind { return FlowVerify }

type Step string

const (
	StepTitle     Step = "title"
	StepInstitute Step = "institute"
	StepSubject   Step = "subject"
	StepDirection Step = "direction"
	StepPages     Step = "pages"
	StepFormat    Step = "format"
)

var stepOrder = []Step{StepTitle, StepInstitute, StepSubject, StepDirection, StepPages, StepFormat}

// OrderFlow collects content order fields one step at a time
type OrderFlow struct {
	ContentType domain.ContentType `json:"content_type"`
	Step        Step               `json:"step"`
	Title       string             `json:"title,omitempty"`
	Institute   string             `json:"institute,omitempty"`
	Subject     string             `json:"subject,omitempty"`
	Direction   string             `json:"direction,omitempty"`
	PageRange   string             `json:"page_range,omitempty"`
	Pages       int                `json:"pages,omitempty"`
	Cost        int64              `json:"cost,omitempty"`
}

func (OrderFlow) Kind() FlowKind { return FlowOrder }

func NewOrderFlow(ct domain.ContentType) OrderFlow {
	return OrderFlow{ContentType: ct, Step: StepTitle}
}

// Next returns the step after s; format is last and maps to itself
func (s Step) Next() Step {
	for i, st := range stepOrder {
		if st == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return s
}

type Session struct {
	UserID          int64
	Flow            Flow // nil when idle
	PendingReferrer *uuid.UUID
	UpdatedAt       time.Time
}

func New(userID int64) *Session {
	return &Session{UserID: userID}
}

// Reset ends the active flow. The pending referrer stays until subscription.
func (s *Session) Reset() {
	s.Flow = nil
}

// Order returns the active order flow, if that is the active flow
func (s *Session) Order() (OrderFlow, bool) {
	f, ok := s.Flow.(OrderFlow)
	return f, ok
}

func (s *Session) Idle() bool {
	return s.Flow == nil
}

// Clone returns a copy that shares nothing mutable with s
func (s *Session) Clone() *Session {
	cp := *s
	if s.PendingReferrer != nil {
		ref := *s.PendingReferrer
		cp.PendingReferrer = &ref
	}
	return &cp
}

type envelope struct {
	UserID          int64      `json:"user_id"`
	Kind            FlowKind   `json:"kind,omitempty"`
	Order           *OrderFlow `json:"order,omitempty"`
	PendingReferrer *uuid.UUID `json:"pending_referrer,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	env := envelope{UserID: s.UserID, PendingReferrer: s.PendingReferrer, UpdatedAt: s.UpdatedAt}
	if s.Flow != nil {
		env.Kind = s.Flow.Kind()
		if f, ok := s.Flow.(OrderFlow); ok {
			env.Order = &f
		}
	}
	return json.Marshal(env)
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	s.UserID = env.UserID
	s.PendingReferrer = env.PendingReferrer
	s.UpdatedAt = env.UpdatedAt

	switch env.Kind {
	case "":
		s.Flow = nil
	case FlowPurchase:
		s.Flow = PurchaseFlow{}
	case FlowVerify:
		s.Flow = VerifyFlow{}
	case FlowOrder:
		if env.Order == nil {
			return fmt.Errorf("session %d: order flow without fields", env.UserID)
		}
		s.Flow = *env.Order
	default:
		return fmt.Errorf("session %d: unknown flow %q", env.UserID, env.Kind)
	}
	return nil
}
