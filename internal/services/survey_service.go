package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SurveyStore abstracts persistence operations required by SurveyService.
type SurveyStore interface {
	HasVoted(sessionID string) (bool, error)
	InsertResponse(r *SurveyResponse) error
}

// ErrAlreadySubmitted is returned when a session tries to vote twice. The
// store enforces the same guarantee; the HasVoted pre-check is advisory.
var ErrAlreadySubmitted = errors.New("you have already submitted a response")

// SurveyService hosts the community survey submission workflow.
type SurveyService struct {
	store       SurveyStore
	now         func() time.Time
	idGenerator func() string
}

type SubmitResult struct {
	ResponseID string
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: defaultResponseID,
	}
}

func defaultResponseID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Submit validates the response for its branch and stores it once per
// session. The stored record is a frozen copy; theft-detail answers left over
// from a branch switch are cleared before insert. The input is not mutated,
// so a failed submission can be retried as-is.
func (s *SurveyService) Submit(r *SurveyResponse, sessionID string) (*SubmitResult, error) {
	if s.store == nil {
		return nil, errors.New("survey service store is nil")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, NewInvalidError("missing session ID")
	}
	if err := ValidateResponse(r); err != nil {
		return nil, err
	}

	voted, err := s.store.HasVoted(sessionID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadySubmitted
	}

	stored := *r
	stored.SecurityMeasures = append([]string(nil), r.SecurityMeasures...)
	if stored.HadPhoneStolen != StolenYes {
		stored.PhoneRecovered = ""
		stored.ReplacementMethod = ""
		stored.TheftLocation = ""
		stored.ReportedToPolice = ""
	}
	stored.ID = s.idGenerator()
	stored.SessionID = sessionID
	stored.SubmittedAt = s.now()

	if err := s.store.InsertResponse(&stored); err != nil {
		return nil, err
	}
	return &SubmitResult{ResponseID: stored.ID}, nil
}
