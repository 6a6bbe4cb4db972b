package api

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrDuplicateSession marks an insert refused because the session already
// submitted a response. Stores return it so callers can tell a duplicate
// vote apart from a storage failure.
var ErrDuplicateSession = errors.New("session has already submitted a response")

// Response is one stored community survey submission.
type Response struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	HadPhoneStolen    string    `json:"had_phone_stolen"`
	PhoneRecovered    string    `json:"phone_recovered,omitempty"`
	ReplacementMethod string    `json:"replacement_method,omitempty"`
	TheftLocation     string    `json:"theft_location,omitempty"`
	SecurityMeasures  []string  `json:"security_measures"`
	ReportedToPolice  string    `json:"reported_to_police,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

type EmergencyContact struct {
	UK        string `json:"uk"`
	Abroad    string `json:"abroad,omitempty"`
	Available string `json:"available,omitempty"`
}

type Provider struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Network        string           `json:"network,omitempty"`
	Website        string           `json:"website,omitempty"`
	Contact        EmergencyContact `json:"emergency_contact"`
	Steps          []string         `json:"steps,omitempty"`
	AdditionalInfo string           `json:"additional_info,omitempty"`
}

type Bank struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Website string           `json:"website,omitempty"`
	Contact EmergencyContact `json:"emergency_contact"`
	Steps   []string         `json:"steps,omitempty"`
}

type TheftPoint struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Location  string  `json:"location_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Thefts    int     `json:"theft_count"`
	Source    string  `json:"data_source,omitempty"`
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

type memoryStore struct {
	mu           sync.RWMutex
	bySession    map[string]*Response
	responses    []*Response
	providers    map[string]*Provider
	banks        map[string]*Bank
	theftPoints  map[string]*TheftPoint // keyed by date|location|source
	usersByEmail map[string]*User
	audit        []AuditEntry
}

// NewMemoryStore returns an empty in-memory Store, used in development and
// tests when no SQLite path is configured.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bySession:    map[string]*Response{},
		responses:    []*Response{},
		providers:    map[string]*Provider{},
		banks:        map[string]*Bank{},
		theftPoints:  map[string]*TheftPoint{},
		usersByEmail: map[string]*User{},
		audit:        []AuditEntry{},
	}
}

func (s *memoryStore) HasVoted(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bySession[sessionID]
	return ok
}

// InsertResponse stores r unless its session already voted. The session
// index is the source of truth for the at-most-once guarantee.
func (s *memoryStore) InsertResponse(r *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySession[r.SessionID]; ok {
		return ErrDuplicateSession
	}
	s.bySession[r.SessionID] = r
	s.responses = append(s.responses, r)
	return nil
}

func (s *memoryStore) ListResponses() []*Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Response(nil), s.responses...)
}

func (s *memoryStore) ListProviders() []*Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *memoryStore) GetProvider(id string) *Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providers[id]
}

func (s *memoryStore) UpsertProvider(p *Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
}

func (s *memoryStore) DeleteProvider(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[id]; !ok {
		return false
	}
	delete(s.providers, id)
	return true
}

func (s *memoryStore) ListBanks() []*Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Bank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *memoryStore) GetBank(id string) *Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banks[id]
}

func (s *memoryStore) UpsertBank(b *Bank) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banks[b.ID] = b
}

func (s *memoryStore) DeleteBank(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[id]; !ok {
		return false
	}
	delete(s.banks, id)
	return true
}

func theftPointKey(p *TheftPoint) string {
	return p.Date + "|" + p.Location + "|" + p.Source
}

func (s *memoryStore) UpsertTheftPoints(ps []*TheftPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		s.theftPoints[theftPointKey(p)] = p
	}
}

func (s *memoryStore) ListTheftPoints() []*TheftPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TheftPoint, 0, len(s.theftPoints))
	for _, p := range s.theftPoints {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Location < out[j].Location
	})
	return out
}

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}
