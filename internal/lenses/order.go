package lenses

import (
	"errors"

	"github.com/clearpath-health/cataract-planner/internal/catalog"
)

// ErrModelNotAllowed rejects a lens model whose category code is not covered
// by the selected package.
var ErrModelNotAllowed = errors.New("lenses: model category not allowed by selected package")

// OrderStatus tracks a lens order through operative logistics.
type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderScheduled     OrderStatus = "scheduled"
	OrderLensOrdered   OrderStatus = "lens_ordered"
	OrderReady         OrderStatus = "ready"
	OrderCompleted     OrderStatus = "completed"
	OrderNotApplicable OrderStatus = "not_applicable"
)

// Order is the per-eye lens order and its scheduling fields. OD and OS
// orders are independent even under a unified package: one package choice,
// two physical lenses.
type Order struct {
	ModelName     string      `json:"model_name,omitempty"`
	ModelCode     string      `json:"model_code,omitempty"`
	Power         string      `json:"power,omitempty"`
	Cylinder      string      `json:"cylinder,omitempty"`
	AxisAlignment string      `json:"axis_alignment,omitempty"`
	SurgeryDate   string      `json:"surgery_date,omitempty"` // YYYY-MM-DD
	ArrivalTime   string      `json:"arrival_time,omitempty"`
	Status        OrderStatus `json:"status,omitempty"`
}

// Completed reports whether surgery has been performed for this eye, which
// freezes the plan.
func (o *Order) Completed() bool { return o.Status == OrderCompleted }

// SetModel writes the chosen model into the order after validating that its
// category code is one the selected package allows.
func (o *Order) SetModel(m MatchedModel, pkg catalog.Package) error {
	allowed := false
	for _, code := range pkg.AllowedLensCodes {
		if code == m.CategoryCode {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrModelNotAllowed
	}
	o.ModelName = m.Name
	o.ModelCode = m.CategoryCode
	if o.Status == "" || o.Status == OrderPending {
		o.Status = OrderLensOrdered
	}
	return nil
}
