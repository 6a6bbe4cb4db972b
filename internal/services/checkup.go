package services

// CheckupCategory groups the security checkup questions for the per-category
// score breakdown.
type CheckupCategory string

const (
	CategoryDevice    CheckupCategory = "device"
	CategorySIM       CheckupCategory = "sim"
	CategoryApps      CheckupCategory = "apps"
	CategoryBackup    CheckupCategory = "backup"
	CategoryAwareness CheckupCategory = "awareness"
)

var checkupCategoryOrder = []CheckupCategory{
	CategoryDevice, CategorySIM, CategoryApps, CategoryBackup, CategoryAwareness,
}

var checkupCategoryNames = map[CheckupCategory]string{
	CategoryDevice:    "Device Security",
	CategorySIM:       "SIM & Network",
	CategoryApps:      "Apps & Banking",
	CategoryBackup:    "Backup & Recovery",
	CategoryAwareness: "Awareness",
}

type CheckupQuestion struct {
	ID       string          `json:"id"`
	Text     string          `json:"question"`
	Category CheckupCategory `json:"category"`
	Points   int             `json:"points"`
}

// The question table is fixed configuration: weights sum to 100, so earned
// points double as a percentage contribution.
var checkupQuestions = []CheckupQuestion{
	{ID: "q1", Text: "Do you have a screen lock enabled (PIN, password, pattern, or biometric)?", Category: CategoryDevice, Points: 15},
	{ID: "q2", Text: "Is your screen lock set to auto-lock within 30 seconds of inactivity?", Category: CategoryDevice, Points: 10},
	{ID: "q3", Text: "Do you use biometric authentication (fingerprint or face recognition)?", Category: CategoryDevice, Points: 10},
	{ID: "q4", Text: "Have you enabled Find My Device/iPhone on your phone?", Category: CategoryDevice, Points: 15},
	{ID: "q5", Text: "Have you set up a SIM PIN lock?", Category: CategorySIM, Points: 10},
	{ID: "q6", Text: "Do you know your phone's IMEI number and have it written down somewhere safe?", Category: CategorySIM, Points: 10},
	{ID: "q7", Text: "Do your banking apps require separate authentication (PIN or biometric)?", Category: CategoryApps, Points: 10},
	{ID: "q8", Text: "Have you enabled two-factor authentication (2FA) on important accounts?", Category: CategoryApps, Points: 10},
	{ID: "q9", Text: "Are your app permissions set to only what's necessary?", Category: CategoryApps, Points: 5},
	{ID: "q10", Text: "Do you regularly back up your phone data to cloud or computer?", Category: CategoryBackup, Points: 5},
	{ID: "q11", Text: "Have you saved emergency contact numbers (bank, network provider) elsewhere?", Category: CategoryBackup, Points: 5},
	{ID: "q12", Text: "Do you avoid using your phone while walking in busy or high-risk areas?", Category: CategoryAwareness, Points: 5},
}

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // "high" or "medium", presentational only
}

// Not every question has a remediation; only these emit recommendations when
// answered no.
var checkupRemediations = map[string]Recommendation{
	"q1": {Title: "Enable Screen Lock", Description: "Set up a PIN, password, or biometric lock immediately. This is your first line of defense.", Priority: "high"},
	"q4": {Title: "Enable Find My Device", Description: "Turn on Find My iPhone (iOS) or Find My Device (Android) to track and remotely lock your phone.", Priority: "high"},
	"q5": {Title: "Set SIM PIN", Description: "Prevent thieves from using your SIM in another device by setting a SIM PIN in your phone settings.", Priority: "high"},
	"q6": {Title: "Record IMEI Number", Description: "Dial *#06# to find your IMEI and save it securely. You'll need this to report theft to police.", Priority: "medium"},
	"q7": {Title: "Secure Banking Apps", Description: "Enable app-specific authentication for banking apps, separate from your device lock.", Priority: "high"},
	"q8": {Title: "Enable 2FA", Description: "Turn on two-factor authentication for email, social media, and banking accounts.", Priority: "medium"},
}

// CheckupQuestions returns the question table in declaration order.
func CheckupQuestions() []CheckupQuestion {
	return append([]CheckupQuestion(nil), checkupQuestions...)
}

type CategoryInfo struct {
	ID   CheckupCategory `json:"id"`
	Name string          `json:"name"`
}

// CheckupCategories returns the category identifiers and display names in
// breakdown order.
func CheckupCategories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(checkupCategoryOrder))
	for _, c := range checkupCategoryOrder {
		out = append(out, CategoryInfo{ID: c, Name: checkupCategoryNames[c]})
	}
	return out
}

type CategoryScore struct {
	Category   CheckupCategory `json:"category"`
	Name       string          `json:"name"`
	Earned     int             `json:"earned_points"`
	Total      int             `json:"total_points"`
	Percentage int             `json:"percentage"`
}

type CheckupResult struct {
	EarnedPoints    int              `json:"earned_points"`
	TotalPoints     int              `json:"total_points"`
	Percentage      int              `json:"percentage"`
	Level           string           `json:"level"`
	Categories      []CategoryScore  `json:"categories"`
	Recommendations []Recommendation `json:"recommendations"`
	Perfect         bool             `json:"perfect"`
}

// ScoreLevel maps a percentage to its qualitative tier.
func ScoreLevel(percentage int) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 70:
		return "Good"
	case percentage >= 50:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// ScoreCheckup converts a complete answer set into a score, tier, category
// breakdown, and recommendation list. Contract: every question must be
// answered; a partial set is rejected with a validation error rather than
// scored. Keys that do not match a question id are ignored.
func ScoreCheckup(answers map[string]bool) (*CheckupResult, error) {
	for _, q := range checkupQuestions {
		if _, ok := answers[q.ID]; !ok {
			return nil, NewInvalidError("all questions must be answered before scoring")
		}
	}

	result := &CheckupResult{}
	catEarned := map[CheckupCategory]int{}
	catTotal := map[CheckupCategory]int{}

	for _, q := range checkupQuestions {
		result.TotalPoints += q.Points
		catTotal[q.Category] += q.Points
		if answers[q.ID] {
			result.EarnedPoints += q.Points
			catEarned[q.Category] += q.Points
			continue
		}
		if rec, ok := checkupRemediations[q.ID]; ok {
			result.Recommendations = append(result.Recommendations, rec)
		}
	}

	result.Percentage = roundPercent(result.EarnedPoints, result.TotalPoints)
	result.Level = ScoreLevel(result.Percentage)
	result.Perfect = result.Percentage == 100

	for _, c := range checkupCategoryOrder {
		result.Categories = append(result.Categories, CategoryScore{
			Category:   c,
			Name:       checkupCategoryNames[c],
			Earned:     catEarned[c],
			Total:      catTotal[c],
			Percentage: roundPercent(catEarned[c], catTotal[c]),
		})
	}

	return result, nil
}
