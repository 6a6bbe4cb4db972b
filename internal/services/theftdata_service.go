package services

import (
	"sort"
	"strings"
	"time"
)

// TheftDataPoint is a monthly theft count for one location, as published by
// the map and dashboard views. Date is the first of the month (YYYY-MM-DD).
type TheftDataPoint struct {
	ID        string  `json:"id,omitempty"`
	Date      string  `json:"date"`
	Location  string  `json:"location_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Thefts    int     `json:"theft_count"`
	Source    string  `json:"data_source,omitempty"`
}

// TimelineFrame is one month of the time-lapse map animation.
type TimelineFrame struct {
	Month  string            `json:"month"` // YYYY-MM
	Total  int               `json:"total"`
	Points []*TheftDataPoint `json:"points"`
}

type TheftDataStore interface {
	UpsertTheftPoints(ps []*TheftDataPoint) error
	ListTheftPoints() ([]*TheftDataPoint, error)
	AddAudit(e AuditEntry)
}

type TheftDataService struct {
	store TheftDataStore
	now   func() time.Time
	idGen func(prefix string, n int) string
}

func NewTheftDataService(store TheftDataStore) *TheftDataService {
	return &TheftDataService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

// UpsertPoints validates and stores a batch of data points. Points are keyed
// by (date, location, source) in the store, so re-seeding the same months
// overwrites rather than duplicates.
func (s *TheftDataService) UpsertPoints(actor string, points []*TheftDataPoint) (int, error) {
	if len(points) == 0 {
		return 0, NewInvalidError("no data points provided")
	}
	for _, p := range points {
		if p == nil {
			return 0, NewInvalidError("nil data point")
		}
		if strings.TrimSpace(p.Location) == "" {
			return 0, NewInvalidError("location_name required")
		}
		if _, err := time.Parse("2006-01-02", p.Date); err != nil {
			return 0, NewInvalidError("invalid date (want YYYY-MM-DD): " + p.Date)
		}
		if p.Thefts < 0 {
			return 0, NewInvalidError("theft_count must not be negative")
		}
		if p.ID == "" {
			p.ID = s.idGen("tp", 10)
		}
	}
	if err := s.store.UpsertTheftPoints(points); err != nil {
		return 0, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "theftdata.upsert", Target: "theft_data_points"})
	return len(points), nil
}

// Timeline groups all stored points into monthly frames ordered by month,
// with each frame's points ordered by location name.
func (s *TheftDataService) Timeline() ([]*TimelineFrame, error) {
	points, err := s.store.ListTheftPoints()
	if err != nil {
		return nil, err
	}
	return BuildTimeline(points), nil
}

func BuildTimeline(points []*TheftDataPoint) []*TimelineFrame {
	byMonth := map[string][]*TheftDataPoint{}
	for _, p := range points {
		if len(p.Date) < 7 {
			continue
		}
		month := p.Date[:7]
		byMonth[month] = append(byMonth[month], p)
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	frames := make([]*TimelineFrame, 0, len(months))
	for _, m := range months {
		pts := byMonth[m]
		sort.Slice(pts, func(i, j int) bool { return pts[i].Location < pts[j].Location })
		frame := &TimelineFrame{Month: m, Points: pts}
		for _, p := range pts {
			frame.Total += p.Thefts
		}
		frames = append(frames, frame)
	}
	return frames
}
