package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/protectmyphone/pmp/internal/api"
)

// SQLiteStore implements api.Store on a SQLite database. Read helpers log
// and return zero values on driver errors, matching the in-memory store's
// error-free interface; writes that must not silently fail (the response
// insert) report through their return value.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeStringSlice(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode string slice: %v", err)
		return nil
	}
	return out
}

func decodeContact(ns sql.NullString) api.EmergencyContact {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return api.EmergencyContact{}
	}
	var out api.EmergencyContact
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode contact: %v", err)
		return api.EmergencyContact{}
	}
	return out
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		log.Printf("sqlite store: parse time %q: %v", v, err)
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) HasVoted(sessionID string) bool {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM community_responses WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		s.logErr("has voted", err)
		return false
	}
	return n > 0
}

func (s *SQLiteStore) InsertResponse(r *api.Response) error {
	measures, err := encodeJSON(r.SecurityMeasures)
	if err != nil {
		return fmt.Errorf("encode security measures: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO community_responses
		(id, session_id, had_phone_stolen, phone_recovered, replacement_method, theft_location, security_measures, reported_to_police, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.HadPhoneStolen,
		toNullString(r.PhoneRecovered), toNullString(r.ReplacementMethod), toNullString(r.TheftLocation),
		measures.String, toNullString(r.ReportedToPolice),
		r.SubmittedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		// The unique session index turns a duplicate vote into a
		// constraint violation; anything else is a real failure and
		// must stay distinguishable from it.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return api.ErrDuplicateSession
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListResponses() []*api.Response {
	rows, err := s.db.Query(`SELECT id, session_id, had_phone_stolen, phone_recovered, replacement_method, theft_location, security_measures, reported_to_police, submitted_at
		FROM community_responses ORDER BY submitted_at`)
	if err != nil {
		s.logErr("list responses", err)
		return nil
	}
	defer rows.Close()
	var out []*api.Response
	for rows.Next() {
		var r api.Response
		var recovered, method, location, police, measures sql.NullString
		var submittedAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.HadPhoneStolen, &recovered, &method, &location, &measures, &police, &submittedAt); err != nil {
			s.logErr("scan response", err)
			continue
		}
		r.PhoneRecovered = recovered.String
		r.ReplacementMethod = method.String
		r.TheftLocation = location.String
		r.SecurityMeasures = decodeStringSlice(measures)
		r.ReportedToPolice = police.String
		r.SubmittedAt = parseTime(submittedAt)
		out = append(out, &r)
	}
	s.logErr("list responses rows", rows.Err())
	return out
}

func (s *SQLiteStore) ListProviders() []*api.Provider {
	rows, err := s.db.Query(`SELECT id, name, network, website, contact, steps, additional_info FROM providers ORDER BY name`)
	if err != nil {
		s.logErr("list providers", err)
		return nil
	}
	defer rows.Close()
	var out []*api.Provider
	for rows.Next() {
		p := scanProvider(rows)
		if p != nil {
			out = append(out, p)
		}
	}
	s.logErr("list providers rows", rows.Err())
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) *api.Provider {
	var p api.Provider
	var network, website, contact, steps, additionalInfo sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &network, &website, &contact, &steps, &additionalInfo); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("sqlite store: scan provider: %v", err)
		}
		return nil
	}
	p.Network = network.String
	p.Website = website.String
	p.Contact = decodeContact(contact)
	p.Steps = decodeStringSlice(steps)
	p.AdditionalInfo = additionalInfo.String
	return &p
}

func (s *SQLiteStore) GetProvider(id string) *api.Provider {
	row := s.db.QueryRow(`SELECT id, name, network, website, contact, steps, additional_info FROM providers WHERE id = ?`, id)
	return scanProvider(row)
}

func (s *SQLiteStore) UpsertProvider(p *api.Provider) {
	contact, err := encodeJSON(p.Contact)
	if err != nil {
		s.logErr("encode provider contact", err)
		return
	}
	steps, err := encodeJSON(p.Steps)
	if err != nil {
		s.logErr("encode provider steps", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO providers (id, name, network, website, contact, steps, additional_info)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, network = excluded.network, website = excluded.website,
			contact = excluded.contact, steps = excluded.steps, additional_info = excluded.additional_info`,
		p.ID, p.Name, toNullString(p.Network), toNullString(p.Website), contact, steps, toNullString(p.AdditionalInfo))
	s.logErr("upsert provider", err)
}

func (s *SQLiteStore) DeleteProvider(id string) bool {
	res, err := s.db.Exec(`DELETE FROM providers WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete provider", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func scanBank(row rowScanner) *api.Bank {
	var b api.Bank
	var website, contact, steps sql.NullString
	if err := row.Scan(&b.ID, &b.Name, &website, &contact, &steps); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("sqlite store: scan bank: %v", err)
		}
		return nil
	}
	b.Website = website.String
	b.Contact = decodeContact(contact)
	b.Steps = decodeStringSlice(steps)
	return &b
}

func (s *SQLiteStore) ListBanks() []*api.Bank {
	rows, err := s.db.Query(`SELECT id, name, website, contact, steps FROM banks ORDER BY name`)
	if err != nil {
		s.logErr("list banks", err)
		return nil
	}
	defer rows.Close()
	var out []*api.Bank
	for rows.Next() {
		b := scanBank(rows)
		if b != nil {
			out = append(out, b)
		}
	}
	s.logErr("list banks rows", rows.Err())
	return out
}

func (s *SQLiteStore) GetBank(id string) *api.Bank {
	row := s.db.QueryRow(`SELECT id, name, website, contact, steps FROM banks WHERE id = ?`, id)
	return scanBank(row)
}

func (s *SQLiteStore) UpsertBank(b *api.Bank) {
	contact, err := encodeJSON(b.Contact)
	if err != nil {
		s.logErr("encode bank contact", err)
		return
	}
	steps, err := encodeJSON(b.Steps)
	if err != nil {
		s.logErr("encode bank steps", err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO banks (id, name, website, contact, steps)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, website = excluded.website,
			contact = excluded.contact, steps = excluded.steps`,
		b.ID, b.Name, toNullString(b.Website), contact, steps)
	s.logErr("upsert bank", err)
}

func (s *SQLiteStore) DeleteBank(id string) bool {
	res, err := s.db.Exec(`DELETE FROM banks WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete bank", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) UpsertTheftPoints(ps []*api.TheftPoint) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("begin theft points", err)
		return
	}
	for _, p := range ps {
		_, err := tx.Exec(`INSERT INTO theft_data_points (id, date, location_name, latitude, longitude, theft_count, data_source)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (date, location_name, data_source) DO UPDATE SET
				latitude = excluded.latitude, longitude = excluded.longitude, theft_count = excluded.theft_count`,
			p.ID, p.Date, p.Location, p.Latitude, p.Longitude, p.Thefts, p.Source)
		if err != nil {
			s.logErr("upsert theft point", err)
			_ = tx.Rollback()
			return
		}
	}
	s.logErr("commit theft points", tx.Commit())
}

func (s *SQLiteStore) ListTheftPoints() []*api.TheftPoint {
	rows, err := s.db.Query(`SELECT id, date, location_name, latitude, longitude, theft_count, data_source
		FROM theft_data_points ORDER BY date, location_name`)
	if err != nil {
		s.logErr("list theft points", err)
		return nil
	}
	defer rows.Close()
	var out []*api.TheftPoint
	for rows.Next() {
		var p api.TheftPoint
		if err := rows.Scan(&p.ID, &p.Date, &p.Location, &p.Latitude, &p.Longitude, &p.Thefts, &p.Source); err != nil {
			s.logErr("scan theft point", err)
			continue
		}
		out = append(out, &p)
	}
	s.logErr("list theft points rows", rows.Err())
	return out
}

func (s *SQLiteStore) AddUser(u *api.User) {
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.CreatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("add user", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	var (
		u         api.User
		createdAt string
	)
	err := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email).
		Scan(&u.ID, &u.Email, &u.PassHash, &createdAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("find user", err)
		}
		return nil
	}
	u.CreatedAt = parseTime(createdAt)
	return &u
}

func (s *SQLiteStore) AddAudit(e api.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log (time, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		e.Time.UTC().Format(time.RFC3339Nano), toNullString(e.Actor), e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("add audit", err)
}

func (s *SQLiteStore) ListAudit() []api.AuditEntry {
	rows, err := s.db.Query(`SELECT time, actor, action, target, note FROM audit_log ORDER BY time`)
	if err != nil {
		s.logErr("list audit", err)
		return nil
	}
	defer rows.Close()
	var out []api.AuditEntry
	for rows.Next() {
		var (
			e                   api.AuditEntry
			ts                  string
			actor, target, note sql.NullString
		)
		if err := rows.Scan(&ts, &actor, &e.Action, &target, &note); err != nil {
			s.logErr("scan audit", err)
			continue
		}
		e.Time = parseTime(ts)
		e.Actor = actor.String
		e.Target = target.String
		e.Note = note.String
		out = append(out, e)
	}
	s.logErr("list audit rows", rows.Err())
	return out
}
