package status

import (
	"github.com/nimbusworks/opsdesk/internal/types"
)

// ProjectStatus is the single authoritative enumeration of every status a
// project can ever hold. Every status assigned anywhere in the codebase must
// appear here.
type ProjectStatus string

const (
	Draft              ProjectStatus = "draft"
	EstimationPrepared ProjectStatus = "estimation_prepared"
	QuotationSent      ProjectStatus = "quotation_sent"
	QuotationApproved  ProjectStatus = "quotation_approved"
	QuotationRejected  ProjectStatus = "quotation_rejected"
	LPOReceived        ProjectStatus = "lpo_received"
	ContractSigned     ProjectStatus = "contract_signed"
	WorkStarted        ProjectStatus = "work_started"
	InProgress         ProjectStatus = "in_progress"
	WorkCompleted      ProjectStatus = "work_completed"
	QualityCheck       ProjectStatus = "quality_check"
	ClientHandover     ProjectStatus = "client_handover"
	FinalInvoiceSent   ProjectStatus = "final_invoice_sent"
	PaymentReceived    ProjectStatus = "payment_received"
	OnHold             ProjectStatus = "on_hold"
	Cancelled          ProjectStatus = "cancelled"
	ProjectClosed      ProjectStatus = "project_closed"
)

// All lists every project status.
var All = []ProjectStatus{
	Draft,
	EstimationPrepared,
	QuotationSent,
	QuotationApproved,
	QuotationRejected,
	LPOReceived,
	ContractSigned,
	WorkStarted,
	InProgress,
	WorkCompleted,
	QualityCheck,
	ClientHandover,
	FinalInvoiceSent,
	PaymentReceived,
	OnHold,
	Cancelled,
	ProjectClosed,
}

// transitions is the fixed adjacency map of allowed project status moves.
// It is populated once at init and never mutated at runtime.
var transitions = map[ProjectStatus][]ProjectStatus{
	Draft:              {EstimationPrepared},
	EstimationPrepared: {QuotationSent, OnHold, Cancelled},
	QuotationSent:      {QuotationApproved, QuotationRejected, OnHold, Cancelled},
	QuotationApproved:  {ContractSigned, OnHold, Cancelled},
	ContractSigned:     {WorkStarted, OnHold, Cancelled},
	WorkStarted:        {InProgress, OnHold, Cancelled},
	InProgress:         {WorkCompleted, OnHold, Cancelled},
	WorkCompleted:      {QualityCheck, OnHold},
	QualityCheck:       {ClientHandover, WorkCompleted},
	ClientHandover:     {FinalInvoiceSent, OnHold},
	FinalInvoiceSent:   {PaymentReceived, OnHold},
	PaymentReceived:    {ProjectClosed},
	OnHold:             {InProgress, WorkStarted, Cancelled},
	Cancelled:          {},
	ProjectClosed:      {},
}

// IsValid reports whether s is a known project status.
func IsValid(s ProjectStatus) bool {
	for _, v := range All {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether the transition table allows moving a project
// from one status to another.
func CanTransition(from, to ProjectStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a validation error naming both endpoints when
// the requested transition is not present in the table.
func ValidateTransition(from, to ProjectStatus) error {
	if !IsValid(to) {
		return types.NewValidationError("Invalid project status '%s'", to)
	}
	if !CanTransition(from, to) {
		return types.NewValidationError("Cannot change project status from '%s' to '%s'", from, to)
	}
	return nil
}

// AllowedFrom returns a copy of the statuses reachable from the given status.
func AllowedFrom(from ProjectStatus) []ProjectStatus {
	out := make([]ProjectStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// AdvanceForProgress implements the progress-driven status inference that
// runs alongside the transition table. It is a second, informal state
// machine: a progress update forces lpo_received projects to work_started,
// pushes work_started to in_progress once progress is positive, and forces
// work_completed at 100%. These moves bypass the transition table; the two
// machines are intentionally kept separate.
// TODO: unify with the transition table once product confirms the intended
// behavior of the progress-driven advances.
func AdvanceForProgress(current ProjectStatus, progress int) ProjectStatus {
	if progress >= 100 {
		return WorkCompleted
	}
	switch current {
	case LPOReceived:
		return WorkStarted
	case WorkStarted:
		if progress > 0 {
			return InProgress
		}
	}
	return current
}
