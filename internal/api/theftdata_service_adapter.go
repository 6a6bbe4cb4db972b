package api

import "github.com/protectmyphone/pmp/internal/services"

type theftDataStoreAdapter struct {
	store Store
}

func newTheftDataStoreAdapter(store Store) services.TheftDataStore {
	return &theftDataStoreAdapter{store: store}
}

func (a *theftDataStoreAdapter) UpsertTheftPoints(ps []*services.TheftDataPoint) error {
	out := make([]*TheftPoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, &TheftPoint{
			ID:        p.ID,
			Date:      p.Date,
			Location:  p.Location,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Thefts:    p.Thefts,
			Source:    p.Source,
		})
	}
	a.store.UpsertTheftPoints(out)
	return nil
}

func (a *theftDataStoreAdapter) ListTheftPoints() ([]*services.TheftDataPoint, error) {
	stored := a.store.ListTheftPoints()
	out := make([]*services.TheftDataPoint, 0, len(stored))
	for _, p := range stored {
		out = append(out, &services.TheftDataPoint{
			ID:        p.ID,
			Date:      p.Date,
			Location:  p.Location,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Thefts:    p.Thefts,
			Source:    p.Source,
		})
	}
	return out, nil
}

func (a *theftDataStoreAdapter) AddAudit(e services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: e.Time, Actor: e.Actor, Action: e.Action, Target: e.Target, Note: e.Note})
}
