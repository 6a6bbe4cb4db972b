package services

import "time"

// StolenStatus is the answer to the survey's gating question. Every later
// step is either shown or skipped based on this value.
type StolenStatus string

const (
	StolenYes          StolenStatus = "yes"
	StolenNo           StolenStatus = "no"
	StolenSomeoneIKnow StolenStatus = "someone_i_know"
)

type RecoveryOutcome string

const (
	RecoveredFully        RecoveryOutcome = "yes_fully"
	RecoveredPartially    RecoveryOutcome = "partially"
	RecoveredNo           RecoveryOutcome = "no"
	RecoveryInvestigating RecoveryOutcome = "investigating"
)

type ReplacementMethod string

const (
	ReplacementNewOutright ReplacementMethod = "new_outright"
	ReplacementSecondHand  ReplacementMethod = "second_hand"
	ReplacementInsurance   ReplacementMethod = "insurance"
	ReplacementContract    ReplacementMethod = "contract"
	ReplacementNotYet      ReplacementMethod = "not_yet"
	ReplacementBackupPhone ReplacementMethod = "backup_phone"
)

type TheftLocation string

const (
	LocationPublicTransport TheftLocation = "public_transport"
	LocationRestaurant      TheftLocation = "restaurant"
	LocationStreet          TheftLocation = "street"
	LocationEvent           TheftLocation = "event"
	LocationShop            TheftLocation = "shop"
	LocationOther           TheftLocation = "other"
)

type PoliceReport string

const (
	PoliceCrimeRef    PoliceReport = "yes_crime_ref"
	PoliceNoFollowup  PoliceReport = "yes_no_followup"
	PoliceNotReported PoliceReport = "no"
	PoliceNetworkOnly PoliceReport = "network_only"
)

// Security measure values accepted in SurveyResponse.SecurityMeasures.
const (
	MeasurePIN          = "pin"
	MeasureBiometric    = "biometric"
	MeasureFindMyDevice = "find_my_device"
	MeasureSimPIN       = "sim_pin"
	MeasureNone         = "none"
)

var validStolen = map[StolenStatus]bool{
	StolenYes: true, StolenNo: true, StolenSomeoneIKnow: true,
}

var validRecovery = map[RecoveryOutcome]bool{
	RecoveredFully: true, RecoveredPartially: true, RecoveredNo: true, RecoveryInvestigating: true,
}

var validReplacement = map[ReplacementMethod]bool{
	ReplacementNewOutright: true, ReplacementSecondHand: true, ReplacementInsurance: true,
	ReplacementContract: true, ReplacementNotYet: true, ReplacementBackupPhone: true,
}

var validLocation = map[TheftLocation]bool{
	LocationPublicTransport: true, LocationRestaurant: true, LocationStreet: true,
	LocationEvent: true, LocationShop: true, LocationOther: true,
}

var validPolice = map[PoliceReport]bool{
	PoliceCrimeRef: true, PoliceNoFollowup: true, PoliceNotReported: true, PoliceNetworkOnly: true,
}

var validMeasure = map[string]bool{
	MeasurePIN: true, MeasureBiometric: true, MeasureFindMyDevice: true,
	MeasureSimPIN: true, MeasureNone: true,
}

// SurveyResponse is one respondent's complete set of answers. Zero values
// mean "unanswered"; the theft-detail fields are only meaningful when
// HadPhoneStolen is StolenYes.
type SurveyResponse struct {
	ID                string            `json:"id,omitempty"`
	HadPhoneStolen    StolenStatus      `json:"had_phone_stolen"`
	PhoneRecovered    RecoveryOutcome   `json:"phone_recovered,omitempty"`
	ReplacementMethod ReplacementMethod `json:"replacement_method,omitempty"`
	TheftLocation     TheftLocation     `json:"theft_location,omitempty"`
	SecurityMeasures  []string          `json:"security_measures"`
	ReportedToPolice  PoliceReport      `json:"reported_to_police,omitempty"`
	SessionID         string            `json:"session_id,omitempty"`
	SubmittedAt       time.Time         `json:"submitted_at,omitempty"`
}

// HasMeasure reports whether the respondent selected the given security measure.
func (r *SurveyResponse) HasMeasure(measure string) bool {
	for _, m := range r.SecurityMeasures {
		if m == measure {
			return true
		}
	}
	return false
}

// ValidateResponse checks branch completeness: the gating question and the
// security measures are always required, the theft-detail questions only when
// the respondent's own phone was stolen.
func ValidateResponse(r *SurveyResponse) error {
	if r == nil {
		return NewInvalidError("missing response body")
	}
	if r.HadPhoneStolen == "" {
		return NewInvalidError("missing required field: had_phone_stolen")
	}
	if !validStolen[r.HadPhoneStolen] {
		return NewInvalidError("invalid value for had_phone_stolen")
	}
	if len(r.SecurityMeasures) == 0 {
		return NewInvalidError("at least one security measure option is required")
	}
	for _, m := range r.SecurityMeasures {
		if !validMeasure[m] {
			return NewInvalidError("invalid security measure: " + m)
		}
	}
	if r.HadPhoneStolen != StolenYes {
		return nil
	}
	if r.PhoneRecovered == "" || r.ReplacementMethod == "" || r.TheftLocation == "" || r.ReportedToPolice == "" {
		return NewInvalidError("missing required fields for theft victims")
	}
	if !validRecovery[r.PhoneRecovered] {
		return NewInvalidError("invalid value for phone_recovered")
	}
	if !validReplacement[r.ReplacementMethod] {
		return NewInvalidError("invalid value for replacement_method")
	}
	if !validLocation[r.TheftLocation] {
		return NewInvalidError("invalid value for theft_location")
	}
	if !validPolice[r.ReportedToPolice] {
		return NewInvalidError("invalid value for reported_to_police")
	}
	return nil
}

// Step identifies a wizard question. Steps 2-4 and 6 only apply to
// respondents whose own phone was stolen.
type Step int

const (
	StepStolen Step = iota + 1
	StepRecovered
	StepReplacement
	StepLocation
	StepSecurity
	StepPolice
)

// Wizard walks a respondent through the survey, skipping the theft-detail
// steps for non-victims. Transitions mutate Response in place; the caller
// sets answers between transitions.
type Wizard struct {
	Step     Step
	Response *SurveyResponse
}

func NewWizard() *Wizard {
	return &Wizard{Step: StepStolen, Response: &SurveyResponse{}}
}

func (w *Wizard) victim() bool { return w.Response.HadPhoneStolen == StolenYes }

// CanProceed reports whether the current step's required answer is set.
// The next/submit action is unavailable while this is false.
func (w *Wizard) CanProceed() bool {
	switch w.Step {
	case StepStolen:
		return w.Response.HadPhoneStolen != ""
	case StepRecovered:
		return w.Response.PhoneRecovered != ""
	case StepReplacement:
		return w.Response.ReplacementMethod != ""
	case StepLocation:
		return w.Response.TheftLocation != ""
	case StepSecurity:
		return len(w.Response.SecurityMeasures) > 0
	case StepPolice:
		return w.Response.ReportedToPolice != ""
	}
	return false
}

// IsFinal reports whether the current step is the last applicable one, i.e.
// the point where next is replaced by submit.
func (w *Wizard) IsFinal() bool {
	if w.victim() {
		return w.Step == StepPolice
	}
	return w.Step == StepSecurity
}

// Next advances to the following applicable step. Non-victims jump straight
// from the gating question to the security-measures step. Next is a no-op
// when the current step is incomplete or final.
func (w *Wizard) Next() Step {
	if !w.CanProceed() || w.IsFinal() {
		return w.Step
	}
	if w.Step == StepStolen && !w.victim() {
		w.Step = StepSecurity
	} else {
		w.Step++
	}
	return w.Step
}

// Back returns to the previous applicable step, reversing the forward skip
// for non-victims so that Next followed by Back lands on the same step.
func (w *Wizard) Back() Step {
	if w.Step == StepStolen {
		return w.Step
	}
	if w.Step == StepSecurity && !w.victim() {
		w.Step = StepStolen
	} else {
		w.Step--
	}
	return w.Step
}
