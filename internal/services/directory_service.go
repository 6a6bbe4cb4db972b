package services

import (
	"strings"
	"time"
)

// EmergencyContact is the number victims should call first.
type EmergencyContact struct {
	UK        string `json:"uk"`
	Abroad    string `json:"abroad,omitempty"`
	Available string `json:"available,omitempty"`
}

// Provider is a mobile network's emergency directory entry: who to call and
// what to ask for when a SIM needs blocking.
type Provider struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Network        string           `json:"network,omitempty"` // host network for MVNOs
	Website        string           `json:"website,omitempty"`
	Contact        EmergencyContact `json:"emergency_contact"`
	Steps          []string         `json:"steps,omitempty"`
	AdditionalInfo string           `json:"additional_info,omitempty"`
}

// Bank is a bank's fraud-line directory entry.
type Bank struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Website string           `json:"website,omitempty"`
	Contact EmergencyContact `json:"emergency_contact"`
	Steps   []string         `json:"steps,omitempty"`
}

type DirectoryStore interface {
	ListProviders() ([]*Provider, error)
	GetProvider(id string) (*Provider, error)
	UpsertProvider(p *Provider) error
	DeleteProvider(id string) (bool, error)

	ListBanks() ([]*Bank, error)
	GetBank(id string) (*Bank, error)
	UpsertBank(b *Bank) error
	DeleteBank(id string) (bool, error)

	AddAudit(e AuditEntry)
}

// DirectoryService manages the public emergency directory. Reads are open;
// mutations come from authenticated admins and are audited.
type DirectoryService struct {
	store DirectoryStore
	now   func() time.Time
	idGen func(prefix string, n int) string
}

func NewDirectoryService(store DirectoryStore) *DirectoryService {
	return &DirectoryService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

func (s *DirectoryService) ListProviders() ([]*Provider, error) {
	return s.store.ListProviders()
}

func (s *DirectoryService) GetProvider(id string) (*Provider, error) {
	p, err := s.store.GetProvider(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("provider not found")
	}
	return p, nil
}

func (s *DirectoryService) SaveProvider(actor string, p *Provider) (*Provider, error) {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return nil, NewInvalidError("provider name required")
	}
	if strings.TrimSpace(p.Contact.UK) == "" {
		return nil, NewInvalidError("uk emergency contact required")
	}
	if p.ID == "" {
		p.ID = s.idGen("mp", 7)
	}
	if err := s.store.UpsertProvider(p); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "directory.provider.save", Target: p.ID})
	return p, nil
}

func (s *DirectoryService) DeleteProvider(actor, id string) error {
	ok, err := s.store.DeleteProvider(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("provider not found")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "directory.provider.delete", Target: id})
	return nil
}

func (s *DirectoryService) ListBanks() ([]*Bank, error) {
	return s.store.ListBanks()
}

func (s *DirectoryService) GetBank(id string) (*Bank, error) {
	b, err := s.store.GetBank(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, NewNotFoundError("bank not found")
	}
	return b, nil
}

func (s *DirectoryService) SaveBank(actor string, b *Bank) (*Bank, error) {
	if b == nil || strings.TrimSpace(b.Name) == "" {
		return nil, NewInvalidError("bank name required")
	}
	if strings.TrimSpace(b.Contact.UK) == "" {
		return nil, NewInvalidError("uk emergency contact required")
	}
	if b.ID == "" {
		b.ID = s.idGen("bk", 7)
	}
	if err := s.store.UpsertBank(b); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "directory.bank.save", Target: b.ID})
	return b, nil
}

func (s *DirectoryService) DeleteBank(actor, id string) error {
	ok, err := s.store.DeleteBank(id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("bank not found")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "directory.bank.delete", Target: id})
	return nil
}
