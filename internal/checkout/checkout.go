package checkout

import (
	"errors"
	"time"
)

// State is the explicit position of a checkout session.
type State string

const (
	StateNoPlan        State = "no_plan"
	StatePlanChosen    State = "plan_chosen"
	StateGatewayChosen State = "gateway_chosen"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
)

var (
	ErrUnknownPlan     = errors.New("checkout: plan not in catalog")
	ErrNoPlan          = errors.New("checkout: no plan chosen")
	ErrUnknownGateway  = errors.New("checkout: gateway not in catalog")
	ErrGatewayInactive = errors.New("checkout: gateway is not active")
	ErrNoGateway       = errors.New("checkout: no gateway chosen")
	ErrTerminal        = errors.New("checkout: session already settled")
)

// Session holds one checkout flow from plan selection to settlement.
// The plan and gateway catalogs are fixed at session open.
type Session struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	Plans     []Plan        `json:"plans"`
	Gateways  []GatewayInfo `json:"gateways"`
	Plan      *Plan         `json:"plan,omitempty"`
	Gateway   *GatewayInfo  `json:"gateway,omitempty"`
	Reference string        `json:"reference,omitempty"`
	Result    *Result       `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewSession(id string, plans []Plan, gateways []GatewayInfo) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		State:     StateNoPlan,
		Plans:     plans,
		Gateways:  gateways,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the session accepts no further transitions.
func (s *Session) Terminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}

// SelectPlan picks a plan by id from the session catalog. An id not in
// the catalog leaves the session untouched. Re-selecting after a gateway
// was chosen drops the gateway, since the charge amount changed.
func (s *Session) SelectPlan(id int64) error {
	if s.Terminal() {
		return ErrTerminal
	}
	for i := range s.Plans {
		if s.Plans[i].ID == id {
			plan := s.Plans[i]
			s.Plan = &plan
			s.Gateway = nil
			s.State = StatePlanChosen
			s.touch()
			return nil
		}
	}
	return ErrUnknownPlan
}

// SelectGateway picks a payment provider. The entry must exist in the
// session catalog and be active; otherwise the session is unchanged.
func (s *Session) SelectGateway(slug string) error {
	if s.Terminal() {
		return ErrTerminal
	}
	if s.State == StateNoPlan {
		return ErrNoPlan
	}
	for i := range s.Gateways {
		if s.Gateways[i].Slug != slug {
			continue
		}
		if !s.Gateways[i].Active {
			return ErrGatewayInactive
		}
		gw := s.Gateways[i]
		s.Gateway = &gw
		s.State = StateGatewayChosen
		s.touch()
		return nil
	}
	return ErrUnknownGateway
}

// Complete settles the session with the gateway's result. Only reachable
// once a gateway was chosen; both outcomes are terminal.
func (s *Session) Complete(res Result) error {
	if s.Terminal() {
		return ErrTerminal
	}
	if s.State != StateGatewayChosen {
		return ErrNoGateway
	}
	if res.ReceivedAt.IsZero() {
		res.ReceivedAt = time.Now()
	}
	s.Result = &res
	if res.Status == ResultSuccess {
		s.State = StateCompleted
	} else {
		s.State = StateFailed
	}
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
