package services

import (
	"math"
	"time"
)

type StatsStore interface {
	ListResponses() ([]*SurveyResponse, error)
}

type RecoveryStats struct {
	FullyRecovered     int `json:"fullyRecovered"`
	PartiallyRecovered int `json:"partiallyRecovered"`
	NotRecovered       int `json:"notRecovered"`
	Investigating      int `json:"investigating"`
	RecoveryRate       int `json:"recoveryRate"`
}

type LocationStats struct {
	PublicTransport int `json:"publicTransport"`
	Restaurant      int `json:"restaurant"`
	Street          int `json:"street"`
	Event           int `json:"event"`
	Shop            int `json:"shop"`
	Other           int `json:"other"`
}

type ReplacementStats struct {
	NewOutright int `json:"newOutright"`
	SecondHand  int `json:"secondHand"`
	Insurance   int `json:"insurance"`
	Contract    int `json:"contract"`
	NotYet      int `json:"notYet"`
	BackupPhone int `json:"backupPhone"`
}

type SecurityStats struct {
	UsingPIN          int `json:"usingPin"`
	UsingBiometric    int `json:"usingBiometric"`
	UsingFindMyDevice int `json:"usingFindMyDevice"`
	UsingSimPIN       int `json:"usingSimPin"`
	NoSecurity        int `json:"noSecurity"`
}

type PoliceStats struct {
	YesCrimeRef   int `json:"yesCrimeRef"`
	YesNoFollowup int `json:"yesNoFollowup"`
	No            int `json:"no"`
	NetworkOnly   int `json:"networkOnly"`
	ReportingRate int `json:"reportingRate"`
}

// CommunityStats aggregates all stored survey responses for the comparative
// insight views. JSON field names follow the public stats payload.
type CommunityStats struct {
	TotalResponses int              `json:"totalResponses"`
	TotalStolen    int              `json:"totalStolen"`
	NeverStolen    int              `json:"neverStolen"`
	SomeoneIKnow   int              `json:"someoneIKnow"`
	Recovery       RecoveryStats    `json:"recoveryStats"`
	Locations      LocationStats    `json:"locationStats"`
	Replacement    ReplacementStats `json:"replacementStats"`
	Security       SecurityStats    `json:"securityStats"`
	Police         PoliceStats      `json:"policeStats"`
	LastUpdated    string           `json:"lastUpdated"`
}

type StatsService struct {
	store StatsStore
	now   func() time.Time
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *StatsService) Summary() (*CommunityStats, error) {
	responses, err := s.store.ListResponses()
	if err != nil {
		return nil, err
	}
	return BuildStats(responses, s.now()), nil
}

// BuildStats computes the community aggregate from raw responses. Recovery
// rate counts fully and partially recovered phones over resolved outcomes
// (investigating excluded); reporting rate counts any police report over all
// victims who answered the reporting question.
func BuildStats(responses []*SurveyResponse, now time.Time) *CommunityStats {
	stats := &CommunityStats{
		TotalResponses: len(responses),
		LastUpdated:    now.Format(time.RFC3339),
	}
	for _, r := range responses {
		switch r.HadPhoneStolen {
		case StolenYes:
			stats.TotalStolen++
		case StolenNo:
			stats.NeverStolen++
		case StolenSomeoneIKnow:
			stats.SomeoneIKnow++
		}

		switch r.PhoneRecovered {
		case RecoveredFully:
			stats.Recovery.FullyRecovered++
		case RecoveredPartially:
			stats.Recovery.PartiallyRecovered++
		case RecoveredNo:
			stats.Recovery.NotRecovered++
		case RecoveryInvestigating:
			stats.Recovery.Investigating++
		}

		switch r.TheftLocation {
		case LocationPublicTransport:
			stats.Locations.PublicTransport++
		case LocationRestaurant:
			stats.Locations.Restaurant++
		case LocationStreet:
			stats.Locations.Street++
		case LocationEvent:
			stats.Locations.Event++
		case LocationShop:
			stats.Locations.Shop++
		case LocationOther:
			stats.Locations.Other++
		}

		switch r.ReplacementMethod {
		case ReplacementNewOutright:
			stats.Replacement.NewOutright++
		case ReplacementSecondHand:
			stats.Replacement.SecondHand++
		case ReplacementInsurance:
			stats.Replacement.Insurance++
		case ReplacementContract:
			stats.Replacement.Contract++
		case ReplacementNotYet:
			stats.Replacement.NotYet++
		case ReplacementBackupPhone:
			stats.Replacement.BackupPhone++
		}

		for _, m := range r.SecurityMeasures {
			switch m {
			case MeasurePIN:
				stats.Security.UsingPIN++
			case MeasureBiometric:
				stats.Security.UsingBiometric++
			case MeasureFindMyDevice:
				stats.Security.UsingFindMyDevice++
			case MeasureSimPIN:
				stats.Security.UsingSimPIN++
			case MeasureNone:
				stats.Security.NoSecurity++
			}
		}

		switch r.ReportedToPolice {
		case PoliceCrimeRef:
			stats.Police.YesCrimeRef++
		case PoliceNoFollowup:
			stats.Police.YesNoFollowup++
		case PoliceNotReported:
			stats.Police.No++
		case PoliceNetworkOnly:
			stats.Police.NetworkOnly++
		}
	}

	resolved := stats.Recovery.FullyRecovered + stats.Recovery.PartiallyRecovered + stats.Recovery.NotRecovered
	stats.Recovery.RecoveryRate = roundPercent(stats.Recovery.FullyRecovered+stats.Recovery.PartiallyRecovered, resolved)

	answered := stats.Police.YesCrimeRef + stats.Police.YesNoFollowup + stats.Police.No + stats.Police.NetworkOnly
	stats.Police.ReportingRate = roundPercent(stats.Police.YesCrimeRef+stats.Police.YesNoFollowup, answered)

	return stats
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
