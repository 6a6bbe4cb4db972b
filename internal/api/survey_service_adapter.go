package api

import (
	"errors"

	"github.com/protectmyphone/pmp/internal/services"
)

type surveyStoreAdapter struct {
	store Store
}

func newSurveyStoreAdapter(store Store) *surveyStoreAdapter {
	return &surveyStoreAdapter{store: store}
}

var (
	_ services.SurveyStore = (*surveyStoreAdapter)(nil)
	_ services.StatsStore  = (*surveyStoreAdapter)(nil)
)

func (a *surveyStoreAdapter) HasVoted(sessionID string) (bool, error) {
	return a.store.HasVoted(sessionID), nil
}

func (a *surveyStoreAdapter) InsertResponse(r *services.SurveyResponse) error {
	stored := &Response{
		ID:                r.ID,
		SessionID:         r.SessionID,
		HadPhoneStolen:    string(r.HadPhoneStolen),
		PhoneRecovered:    string(r.PhoneRecovered),
		ReplacementMethod: string(r.ReplacementMethod),
		TheftLocation:     string(r.TheftLocation),
		SecurityMeasures:  append([]string(nil), r.SecurityMeasures...),
		ReportedToPolice:  string(r.ReportedToPolice),
		SubmittedAt:       r.SubmittedAt,
	}
	// Only a true duplicate becomes the conflict error; storage failures
	// stay as-is so the caller reports a retryable error instead.
	if err := a.store.InsertResponse(stored); err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			return services.ErrAlreadySubmitted
		}
		return err
	}
	return nil
}

func (a *surveyStoreAdapter) ListResponses() ([]*services.SurveyResponse, error) {
	stored := a.store.ListResponses()
	out := make([]*services.SurveyResponse, 0, len(stored))
	for _, r := range stored {
		out = append(out, &services.SurveyResponse{
			ID:                r.ID,
			SessionID:         r.SessionID,
			HadPhoneStolen:    services.StolenStatus(r.HadPhoneStolen),
			PhoneRecovered:    services.RecoveryOutcome(r.PhoneRecovered),
			ReplacementMethod: services.ReplacementMethod(r.ReplacementMethod),
			TheftLocation:     services.TheftLocation(r.TheftLocation),
			SecurityMeasures:  append([]string(nil), r.SecurityMeasures...),
			ReportedToPolice:  services.PoliceReport(r.ReportedToPolice),
			SubmittedAt:       r.SubmittedAt,
		})
	}
	return out, nil
}
