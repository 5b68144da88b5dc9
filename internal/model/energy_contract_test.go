package model

import "testing"

// TestContractTransitions tests the contract state transition table
func TestContractTransitions(t *testing.T) {
	cases := []struct {
		from    ContractStatus
		to      ContractStatus
		allowed bool
	}{
		{ContractStatusDraft, ContractStatusActive, true},
		{ContractStatusDraft, ContractStatusTerminated, true},
		{ContractStatusDraft, ContractStatusSuspended, false},
		{ContractStatusActive, ContractStatusSuspended, true},
		{ContractStatusActive, ContractStatusTerminated, true},
		{ContractStatusActive, ContractStatusDraft, false},
		{ContractStatusSuspended, ContractStatusActive, true},
		{ContractStatusSuspended, ContractStatusTerminated, true},
		{ContractStatusSuspended, ContractStatusDraft, false},
		{ContractStatusTerminated, ContractStatusActive, false},
		{ContractStatusTerminated, ContractStatusDraft, false},
		{ContractStatusTerminated, ContractStatusSuspended, false},
	}

	for _, c := range cases {
		contract := EnergyContract{Status: c.from}
		if got := contract.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// TestContractTerminal tests that terminated is the only terminal state
func TestContractTerminal(t *testing.T) {
	for _, status := range []ContractStatus{ContractStatusDraft, ContractStatusActive, ContractStatusSuspended} {
		c := EnergyContract{Status: status}
		if c.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}

	terminated := EnergyContract{Status: ContractStatusTerminated}
	if !terminated.IsTerminal() {
		t.Error("terminated should be terminal")
	}
}
