package gateway

import (
	"context"
	"fmt"
)

type entry struct {
	slug    string
	title   string
	active  bool
	gateway Gateway
}

// Info describes one registered provider for flow catalogs.
type Info struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type Manager struct {
	order    []string
	gateways map[string]*entry
}

func NewManager() *Manager {
	return &Manager{gateways: make(map[string]*entry)}
}

func (m *Manager) Register(slug, title string, active bool, gw Gateway) {
	if _, ok := m.gateways[slug]; !ok {
		m.order = append(m.order, slug)
	}
	m.gateways[slug] = &entry{slug: slug, title: title, active: active, gateway: gw}
}

// Catalog lists providers in registration order.
func (m *Manager) Catalog() []Info {
	out := make([]Info, 0, len(m.order))
	for _, slug := range m.order {
		e := m.gateways[slug]
		out = append(out, Info{Slug: e.slug, Title: e.title, Active: e.active})
	}
	return out
}

func (m *Manager) Initiate(ctx context.Context, slug string, req InitiateRequest) (InitiateResponse, error) {
	e, ok := m.gateways[slug]
	if !ok {
		return InitiateResponse{}, fmt.Errorf("gateway not registered: %s", slug)
	}
	if !e.active {
		return InitiateResponse{}, fmt.Errorf("gateway not active: %s", slug)
	}
	return e.gateway.Initiate(ctx, req)
}

func (m *Manager) Verify(ctx context.Context, slug string, req VerifyRequest) (VerifyResponse, error) {
	e, ok := m.gateways[slug]
	if !ok {
		return VerifyResponse{}, fmt.Errorf("gateway not registered: %s", slug)
	}
	return e.gateway.Verify(ctx, req)
}
