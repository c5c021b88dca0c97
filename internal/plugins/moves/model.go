// Package moves swaps a shoot day onto another date. The backend does the
// renumbering; this package checks the request against the loaded
// calendar first so obvious mistakes never leave the server, and guards
// against the same project being moved twice at once.
package moves

import (
	"github.com/keyxmakerx/shootcal/internal/config"
)

// ModeSwap is the only move mode the backend implements.
const ModeSwap = "swap"

// User-facing messages. They match the backend's wording so the admin sees
// the same text whether the check failed here or upstream.
const (
	msgMissingDate     = "Missing source or target date"
	msgDayNotFound     = "Source or destination day not found in calendar"
	msgNotShootDay     = "Can only move shoot days"
	msgNonWorkingDay   = "Cannot move to a non-working day (holiday, hiatus, or non-working weekend)"
	msgUnsupportedMode = "Unsupported move mode"
	msgInFlight        = "Another move for this project is still in progress."
)

// MoveInput is a move request from the calendar page.
type MoveInput struct {
	From string `json:"fromDate" form:"fromDate" validate:"required,datetime=2006-01-02"`
	To   string `json:"toDate" form:"toDate" validate:"required,datetime=2006-01-02"`
}

// APIRequest is the JSON body of the script-facing endpoint. It accepts
// both historical field pairs.
type APIRequest struct {
	FromDate   string `json:"fromDate"`
	ToDate     string `json:"toDate"`
	SourceDate string `json:"sourceDate"`
	TargetDate string `json:"targetDate"`
	Mode       string `json:"mode"`
}

// Input normalises the request, preferring fromDate/toDate.
func (r APIRequest) Input() MoveInput {
	in := MoveInput{From: r.FromDate, To: r.ToDate}
	if in.From == "" {
		in.From = r.SourceDate
	}
	if in.To == "" {
		in.To = r.TargetDate
	}
	return in
}

type fromToPayload struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Mode     string `json:"mode"`
}

type sourceTargetPayload struct {
	SourceDate string `json:"sourceDate"`
	TargetDate string `json:"targetDate"`
}

// buildPayload shapes the upstream body for the configured deployment.
func buildPayload(shape string, in MoveInput) any {
	if shape == config.MovePayloadSourceTarget {
		return sourceTargetPayload{SourceDate: in.From, TargetDate: in.To}
	}
	return fromToPayload{FromDate: in.From, ToDate: in.To, Mode: ModeSwap}
}
