package session

import "sync"

// Policy holds the template currently configured by the application. It
// can be updated while sessions are in use, in which case the stored
// sessions created from the previous template stop matching.
type Policy struct {
	mu       sync.RWMutex
	template Template
}

func NewPolicy(template Template) (*Policy, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}
	return &Policy{
		template: template.clone(),
	}, nil
}

func (p *Policy) Template() Template {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.template.clone()
}

func (p *Policy) Update(template Template) error {
	if err := template.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.template = template.clone()
	return nil
}

func (t Template) clone() Template {
	shape := t.Shape().normalised()
	return Template{
		ExpiresIn:        t.ExpiresIn,
		FeeLimit:         shape.FeeLimit,
		CallPolicies:     shape.CallPolicies,
		TransferPolicies: shape.TransferPolicies,
	}
}
