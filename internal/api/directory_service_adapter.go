package api

import "github.com/protectmyphone/pmp/internal/services"

type directoryStoreAdapter struct {
	store Store
}

func newDirectoryStoreAdapter(store Store) services.DirectoryStore {
	return &directoryStoreAdapter{store: store}
}

func providerToService(p *Provider) *services.Provider {
	if p == nil {
		return nil
	}
	return &services.Provider{
		ID:             p.ID,
		Name:           p.Name,
		Network:        p.Network,
		Website:        p.Website,
		Contact:        services.EmergencyContact(p.Contact),
		Steps:          append([]string(nil), p.Steps...),
		AdditionalInfo: p.AdditionalInfo,
	}
}

func providerFromService(p *services.Provider) *Provider {
	return &Provider{
		ID:             p.ID,
		Name:           p.Name,
		Network:        p.Network,
		Website:        p.Website,
		Contact:        EmergencyContact(p.Contact),
		Steps:          append([]string(nil), p.Steps...),
		AdditionalInfo: p.AdditionalInfo,
	}
}

func bankToService(b *Bank) *services.Bank {
	if b == nil {
		return nil
	}
	return &services.Bank{
		ID:      b.ID,
		Name:    b.Name,
		Website: b.Website,
		Contact: services.EmergencyContact(b.Contact),
		Steps:   append([]string(nil), b.Steps...),
	}
}

func bankFromService(b *services.Bank) *Bank {
	return &Bank{
		ID:      b.ID,
		Name:    b.Name,
		Website: b.Website,
		Contact: EmergencyContact(b.Contact),
		Steps:   append([]string(nil), b.Steps...),
	}
}

func (a *directoryStoreAdapter) ListProviders() ([]*services.Provider, error) {
	stored := a.store.ListProviders()
	out := make([]*services.Provider, 0, len(stored))
	for _, p := range stored {
		out = append(out, providerToService(p))
	}
	return out, nil
}

func (a *directoryStoreAdapter) GetProvider(id string) (*services.Provider, error) {
	return providerToService(a.store.GetProvider(id)), nil
}

func (a *directoryStoreAdapter) UpsertProvider(p *services.Provider) error {
	a.store.UpsertProvider(providerFromService(p))
	return nil
}

func (a *directoryStoreAdapter) DeleteProvider(id string) (bool, error) {
	return a.store.DeleteProvider(id), nil
}

func (a *directoryStoreAdapter) ListBanks() ([]*services.Bank, error) {
	stored := a.store.ListBanks()
	out := make([]*services.Bank, 0, len(stored))
	for _, b := range stored {
		out = append(out, bankToService(b))
	}
	return out, nil
}

func (a *directoryStoreAdapter) GetBank(id string) (*services.Bank, error) {
	return bankToService(a.store.GetBank(id)), nil
}

func (a *directoryStoreAdapter) UpsertBank(b *services.Bank) error {
	a.store.UpsertBank(bankFromService(b))
	return nil
}

func (a *directoryStoreAdapter) DeleteBank(id string) (bool, error) {
	return a.store.DeleteBank(id), nil
}

func (a *directoryStoreAdapter) AddAudit(e services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: e.Time, Actor: e.Actor, Action: e.Action, Target: e.Target, Note: e.Note})
}
