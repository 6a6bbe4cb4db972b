package services

import (
	"testing"
	"time"
)

type stubDirectoryStore struct {
	providers map[string]*Provider
	banks     map[string]*Bank
	audit     []AuditEntry
}

func newStubDirectoryStore() *stubDirectoryStore {
	return &stubDirectoryStore{providers: map[string]*Provider{}, banks: map[string]*Bank{}}
}

func (s *stubDirectoryStore) ListProviders() ([]*Provider, error) {
	out := make([]*Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubDirectoryStore) GetProvider(id string) (*Provider, error) { return s.providers[id], nil }

func (s *stubDirectoryStore) UpsertProvider(p *Provider) error {
	s.providers[p.ID] = p
	return nil
}

func (s *stubDirectoryStore) DeleteProvider(id string) (bool, error) {
	if _, ok := s.providers[id]; !ok {
		return false, nil
	}
	delete(s.providers, id)
	return true, nil
}

func (s *stubDirectoryStore) ListBanks() ([]*Bank, error) {
	out := make([]*Bank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b)
	}
	return out, nil
}

func (s *stubDirectoryStore) GetBank(id string) (*Bank, error) { return s.banks[id], nil }

func (s *stubDirectoryStore) UpsertBank(b *Bank) error {
	s.banks[b.ID] = b
	return nil
}

func (s *stubDirectoryStore) DeleteBank(id string) (bool, error) {
	if _, ok := s.banks[id]; !ok {
		return false, nil
	}
	delete(s.banks, id)
	return true, nil
}

func (s *stubDirectoryStore) AddAudit(e AuditEntry) { s.audit = append(s.audit, e) }

func TestSaveProvider(t *testing.T) {
	store := newStubDirectoryStore()
	svc := NewDirectoryService(store)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	svc.idGen = func(prefix string, n int) string { return prefix + "0000001" }

	saved, err := svc.SaveProvider("admin@example.com", &Provider{
		Name:    "EE",
		Contact: EmergencyContact{UK: "0800 956 6000"},
		Steps:   []string{"Call to block SIM", "Request a PAC if porting"},
	})
	if err != nil {
		t.Fatalf("SaveProvider returned error: %v", err)
	}
	if saved.ID != "mp0000001" {
		t.Fatalf("id = %q, want mp prefix", saved.ID)
	}
	if store.providers[saved.ID] == nil {
		t.Fatalf("provider not stored")
	}
	if len(store.audit) != 1 || store.audit[0].Action != "directory.provider.save" || store.audit[0].Actor != "admin@example.com" {
		t.Fatalf("audit = %+v", store.audit)
	}
}

func TestSaveProviderKeepsExistingID(t *testing.T) {
	store := newStubDirectoryStore()
	svc := NewDirectoryService(store)

	_, err := svc.SaveProvider("a", &Provider{ID: "mpexisting", Name: "O2", Contact: EmergencyContact{UK: "202"}})
	if err != nil {
		t.Fatalf("SaveProvider returned error: %v", err)
	}
	if store.providers["mpexisting"] == nil {
		t.Fatalf("existing id not preserved")
	}
}

func TestSaveProviderValidation(t *testing.T) {
	svc := NewDirectoryService(newStubDirectoryStore())

	cases := []*Provider{
		nil,
		{Name: "", Contact: EmergencyContact{UK: "123"}},
		{Name: "EE"}, // missing UK number
	}
	for i, p := range cases {
		_, err := svc.SaveProvider("a", p)
		if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
			t.Fatalf("case %d: error = %v, want invalid", i, err)
		}
	}
}

func TestGetProviderNotFound(t *testing.T) {
	svc := NewDirectoryService(newStubDirectoryStore())
	_, err := svc.GetProvider("missing")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("error = %v, want not_found", err)
	}
}

func TestDeleteProvider(t *testing.T) {
	store := newStubDirectoryStore()
	store.providers["mp1"] = &Provider{ID: "mp1", Name: "Three", Contact: EmergencyContact{UK: "333"}}
	svc := NewDirectoryService(store)

	if err := svc.DeleteProvider("admin@example.com", "mp1"); err != nil {
		t.Fatalf("DeleteProvider returned error: %v", err)
	}
	if len(store.audit) != 1 || store.audit[0].Action != "directory.provider.delete" || store.audit[0].Target != "mp1" {
		t.Fatalf("audit = %+v", store.audit)
	}

	err := svc.DeleteProvider("admin@example.com", "mp1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("second delete error = %v, want not_found", err)
	}
}

func TestSaveAndDeleteBank(t *testing.T) {
	store := newStubDirectoryStore()
	svc := NewDirectoryService(store)
	svc.idGen = func(prefix string, n int) string { return prefix + "0000002" }

	saved, err := svc.SaveBank("admin@example.com", &Bank{
		Name:    "Monzo",
		Contact: EmergencyContact{UK: "0800 802 1281", Available: "24/7"},
	})
	if err != nil {
		t.Fatalf("SaveBank returned error: %v", err)
	}
	if saved.ID != "bk0000002" {
		t.Fatalf("id = %q, want bk prefix", saved.ID)
	}

	if err := svc.DeleteBank("admin@example.com", saved.ID); err != nil {
		t.Fatalf("DeleteBank returned error: %v", err)
	}
	if len(store.banks) != 0 {
		t.Fatalf("bank not deleted")
	}
	if len(store.audit) != 2 || store.audit[1].Action != "directory.bank.delete" {
		t.Fatalf("audit = %+v", store.audit)
	}
}

func TestGetBankNotFound(t *testing.T) {
	svc := NewDirectoryService(newStubDirectoryStore())
	_, err := svc.GetBank("missing")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("error = %v, want not_found", err)
	}
}
