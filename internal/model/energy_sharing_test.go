package model

import (
	"testing"
	"time"
)

// TestSharingTransitions tests the sharing state transition table
func TestSharingTransitions(t *testing.T) {
	cases := []struct {
		from    SharingStatus
		to      SharingStatus
		allowed bool
	}{
		{SharingStatusProposed, SharingStatusAccepted, true},
		{SharingStatusProposed, SharingStatusCancelled, true},
		{SharingStatusProposed, SharingStatusActive, false},
		{SharingStatusProposed, SharingStatusCompleted, false},
		{SharingStatusAccepted, SharingStatusActive, true},
		{SharingStatusAccepted, SharingStatusCompleted, true},
		{SharingStatusAccepted, SharingStatusCancelled, true},
		{SharingStatusAccepted, SharingStatusProposed, false},
		{SharingStatusActive, SharingStatusCompleted, true},
		{SharingStatusActive, SharingStatusCancelled, true},
		{SharingStatusActive, SharingStatusAccepted, false},
		{SharingStatusCompleted, SharingStatusCancelled, false},
		{SharingStatusCompleted, SharingStatusActive, false},
		{SharingStatusCancelled, SharingStatusAccepted, false},
		{SharingStatusCancelled, SharingStatusCompleted, false},
	}

	for _, c := range cases {
		s := EnergySharing{Status: c.from}
		if got := s.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

// TestSharingTerminal tests terminal state detection
func TestSharingTerminal(t *testing.T) {
	for _, status := range []SharingStatus{SharingStatusProposed, SharingStatusAccepted, SharingStatusActive} {
		s := EnergySharing{Status: status}
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
	for _, status := range []SharingStatus{SharingStatusCompleted, SharingStatusCancelled} {
		s := EnergySharing{Status: status}
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
}

// TestSharingParticipant tests participant identity check
func TestSharingParticipant(t *testing.T) {
	s := EnergySharing{ProviderUserID: "p1", ConsumerUserID: "c1"}

	if !s.IsParticipant("p1") {
		t.Error("Provider should be a participant")
	}
	if !s.IsParticipant("c1") {
		t.Error("Consumer should be a participant")
	}
	if s.IsParticipant("x1") {
		t.Error("Unrelated user should not be a participant")
	}
}

// TestCanAccept tests that only the designated consumer can accept a proposal
func TestCanAccept(t *testing.T) {
	s := EnergySharing{ProviderUserID: "p1", ConsumerUserID: "c1"}

	if !s.CanAccept("c1") {
		t.Error("Consumer should be able to accept the proposal")
	}
	if s.CanAccept("p1") {
		t.Error("Provider should not be able to accept their own proposal")
	}
	if s.CanAccept("x1") {
		t.Error("Unrelated user should not be able to accept the proposal")
	}
}

// TestProposalExpiry tests the lazy proposal expiry check
func TestProposalExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := EnergySharing{Status: SharingStatusProposed, ProposalExpiry: past}
	if !expired.IsProposalExpired() {
		t.Error("Proposal past its expiry should be expired")
	}

	pending := EnergySharing{Status: SharingStatusProposed, ProposalExpiry: future}
	if pending.IsProposalExpired() {
		t.Error("Proposal before its expiry should not be expired")
	}

	// Only proposed sharings can be proposal-expired
	accepted := EnergySharing{Status: SharingStatusAccepted, ProposalExpiry: past}
	if accepted.IsProposalExpired() {
		t.Error("Accepted sharing should not report proposal expiry")
	}
}

// TestRatingColumns tests that each side of a rating writes its own column set
func TestRatingColumns(t *testing.T) {
	s := EnergySharing{ProviderUserID: "p1", ConsumerUserID: "c1"}

	rating, feedback, repeat := s.RatingColumns("c1")
	if rating != "provider_rating" || feedback != "provider_feedback" || repeat != "provider_would_repeat" {
		t.Errorf("Consumer should rate the provider, got %s/%s/%s", rating, feedback, repeat)
	}

	rating, feedback, repeat = s.RatingColumns("p1")
	if rating != "consumer_rating" || feedback != "consumer_feedback" || repeat != "consumer_would_repeat" {
		t.Errorf("Provider should rate the consumer, got %s/%s/%s", rating, feedback, repeat)
	}

	// The two sides must never share a column, or one rating would overwrite the other
	cRating, cFeedback, cRepeat := s.RatingColumns("c1")
	pRating, pFeedback, pRepeat := s.RatingColumns("p1")
	if cRating == pRating || cFeedback == pFeedback || cRepeat == pRepeat {
		t.Error("Consumer and provider rating columns must be distinct")
	}
}

// TestValidRating tests the rating bounds
func TestValidRating(t *testing.T) {
	for _, r := range []int{1, 2, 3, 4, 5} {
		if !ValidRating(r) {
			t.Errorf("Rating %d should be valid", r)
		}
	}
	for _, r := range []int{0, -1, 6, 100} {
		if ValidRating(r) {
			t.Errorf("Rating %d should be invalid", r)
		}
	}
}

// TestSharingAmounts verifies the derived amount arithmetic used by the handlers
func TestSharingAmounts(t *testing.T) {
	// 100 kWh at 0.20 per kWh should cost 20.00
	amount := 100.0
	price := 0.20
	total := amount * price
	if total != 20.0 {
		t.Errorf("Expected total 20.0, got %f", total)
	}

	// delivered + remaining must equal the agreed amount
	delivered := 90.0
	remaining := amount - delivered
	if delivered+remaining != amount {
		t.Errorf("delivered+remaining should equal %f, got %f", amount, delivered+remaining)
	}
}
