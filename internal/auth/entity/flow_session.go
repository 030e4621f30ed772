package entity

import (
	"encoding/json"
	"errors"
)

// ErrNoPendingFlow indicates the caller tried to verify a step without a
// matching pending flow. Stale or missing flow state is a hard failure; the
// caller must start the flow over.
var ErrNoPendingFlow = errors.New("no pending flow for this step")

// FlowKind discriminates the flow a session belongs to.
type FlowKind string

const (
	// FlowOTP is a pending register or login challenge.
	FlowOTP FlowKind = "otp"
	// FlowReset is a pending password-reset challenge.
	FlowReset FlowKind = "reset"
	// FlowIdentifierChange is a pending identifier-change challenge.
	FlowIdentifierChange FlowKind = "identifier_change"
)

// FlowSession is the state parked between the request and verify steps of a
// multi-request flow. It is a tagged union: Kind decides which fields are
// meaningful. The transport serializes it opaquely; flow logic only ever
// consumes it through the Pending* accessors, which enforce the tag.
type FlowSession struct {
	Kind    FlowKind `json:"kind"`
	Target  string   `json:"target"`
	Channel Channel  `json:"channel"`
	// Purpose is set only for FlowOTP (register or login).
	Purpose Purpose `json:"purpose,omitempty"`
}

// NewOTPFlow parks a register or login challenge.
func NewOTPFlow(t Target, purpose Purpose) FlowSession {
	return FlowSession{Kind: FlowOTP, Target: t.Value, Channel: t.Channel, Purpose: purpose}
}

// NewResetFlow parks a password-reset challenge.
func NewResetFlow(t Target) FlowSession {
	return FlowSession{Kind: FlowReset, Target: t.Value, Channel: t.Channel}
}

// NewIdentifierChangeFlow parks an identifier-change challenge for the new
// target being claimed.
func NewIdentifierChangeFlow(t Target) FlowSession {
	return FlowSession{Kind: FlowIdentifierChange, Target: t.Value, Channel: t.Channel}
}

// PendingOTP returns the parked target and purpose, or ErrNoPendingFlow when
// the session is not a register/login challenge.
func (f FlowSession) PendingOTP() (Target, Purpose, error) {
	if f.Kind != FlowOTP || f.Target == "" {
		return Target{}, PurposeUnknown, ErrNoPendingFlow
	}
	return Target{Value: f.Target, Channel: f.Channel}, f.Purpose, nil
}

// PendingReset returns the parked reset target, or ErrNoPendingFlow.
func (f FlowSession) PendingReset() (Target, error) {
	if f.Kind != FlowReset || f.Target == "" {
		return Target{}, ErrNoPendingFlow
	}
	return Target{Value: f.Target, Channel: f.Channel}, nil
}

// PendingIdentifierChange returns the parked new target, or ErrNoPendingFlow.
func (f FlowSession) PendingIdentifierChange() (Target, error) {
	if f.Kind != FlowIdentifierChange || f.Target == "" {
		return Target{}, ErrNoPendingFlow
	}
	return Target{Value: f.Target, Channel: f.Channel}, nil
}

// Encode serializes the session for the transport's session store.
func (f FlowSession) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFlowSession deserializes a session payload written by Encode.
func DecodeFlowSession(raw []byte) (FlowSession, error) {
	var f FlowSession
	if err := json.Unmarshal(raw, &f); err != nil {
		return FlowSession{}, err
	}
	return f, nil
}
