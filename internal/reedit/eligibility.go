package reedit

import (
	"time"

	"iisa-recruitment-backend/internal/domain"
)

// Eligibility is what the landing page needs to offer "edit your submission".
type Eligibility struct {
	CanReEdit   bool       `json:"canReEdit"`
	CandidateID string     `json:"candidateId,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	EditToken   string     `json:"-"`
}

// Remember records a successful registration.
func Remember(store Store, candidateID string, registeredAt time.Time, editToken string) {
	store.Set(KeyCandidateID, candidateID)
	store.Set(KeyRegistrationDate, registeredAt.UTC().Format(time.RFC3339Nano))
	if editToken != "" {
		store.Set(KeyEditToken, editToken)
	}
}

func Forget(store Store) {
	store.Remove(KeyCandidateID)
	store.Remove(KeyRegistrationDate)
	store.Remove(KeyEditToken)
}

// Check reads the bookkeeping. The landing card uses a strict now < deadline;
// once that fails, or the stored date is unreadable, the keys are cleared.
func Check(store Store, window domain.EditWindow, now time.Time) Eligibility {
	id, okID := store.Get(KeyCandidateID)
	raw, okDate := store.Get(KeyRegistrationDate)
	if !okID || !okDate {
		return Eligibility{}
	}

	deadline, ok := window.Deadline(domain.ParseTimestamp(raw))
	if !ok || now.UnixMilli() >= deadline.UnixMilli() {
		Forget(store)
		return Eligibility{}
	}

	token, _ := store.Get(KeyEditToken)
	return Eligibility{
		CanReEdit:   true,
		CandidateID: id,
		ExpiresAt:   &deadline,
		EditToken:   token,
	}
}
