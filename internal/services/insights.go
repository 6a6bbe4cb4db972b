package services

import "fmt"

// GenerateInsights derives plain-language observations from a just-submitted
// response and the current community aggregate. Rules run in a fixed priority
// order and append independently; the list may be empty.
//
// The recovery-percentage rule divides by resolved outcomes only (fully,
// partially, never recovered); responses still under investigation are
// excluded from the denominator, and the rule is skipped entirely when no
// outcome has been resolved yet or when stats are unavailable.
func GenerateInsights(r *SurveyResponse, stats *CommunityStats) []string {
	insights := []string{}
	if r == nil {
		return insights
	}

	if r.HadPhoneStolen == StolenYes {
		if r.PhoneRecovered == RecoveredNo && stats != nil {
			resolved := stats.Recovery.FullyRecovered + stats.Recovery.PartiallyRecovered + stats.Recovery.NotRecovered
			if resolved > 0 {
				pct := roundPercent(stats.Recovery.NotRecovered, resolved)
				insights = append(insights, fmt.Sprintf("%d%% of theft victims in our community also never recovered their phone.", pct))
			}
		}

		if r.HasMeasure(MeasureFindMyDevice) {
			insights = append(insights, "Find My Device significantly increases recovery chances. Keep it enabled!")
		} else {
			insights = append(insights, "Consider enabling Find My Device - users with this feature have higher recovery rates.")
		}

		if r.TheftLocation == LocationPublicTransport {
			insights = append(insights, "Public transport is the most common theft location in our data. Stay extra vigilant on buses and trains.")
		}

		if r.ReportedToPolice == PoliceCrimeRef {
			insights = append(insights, "Good! Reporting to police creates official records that may help with insurance claims.")
		} else if r.ReportedToPolice == PoliceNotReported {
			insights = append(insights, "Consider reporting to police even if recovery seems unlikely - it helps track crime patterns.")
		}
	} else {
		if r.HasMeasure(MeasureBiometric) && r.HasMeasure(MeasureFindMyDevice) {
			insights = append(insights, "Excellent security setup! You're well-protected against theft.")
		} else {
			insights = append(insights, "Consider adding more security layers like biometric locks and Find My Device.")
		}
	}

	return insights
}

// MostCommonLocation names the theft location with the highest count.
func MostCommonLocation(stats *CommunityStats) string {
	if stats == nil {
		return ""
	}
	l := stats.Locations
	max := l.PublicTransport
	for _, v := range []int{l.Restaurant, l.Street, l.Event, l.Shop, l.Other} {
		if v > max {
			max = v
		}
	}
	switch max {
	case l.PublicTransport:
		return "Public Transport"
	case l.Street:
		return "Street"
	case l.Restaurant:
		return "Restaurant/Café"
	case l.Event:
		return "Event/Venue"
	case l.Shop:
		return "Shop/Mall"
	}
	return "Other"
}

// SecurityAdoptionRate is the percentage of respondents reporting at least
// one real security measure.
func SecurityAdoptionRate(stats *CommunityStats) int {
	if stats == nil || stats.TotalResponses == 0 {
		return 0
	}
	return roundPercent(stats.TotalResponses-stats.Security.NoSecurity, stats.TotalResponses)
}
