package api

type Store interface {
	HasVoted(sessionID string) bool
	// InsertResponse stores r, returning ErrDuplicateSession when the
	// session already voted. Any other error is a storage failure.
	InsertResponse(r *Response) error
	ListResponses() []*Response

	ListProviders() []*Provider
	GetProvider(id string) *Provider
	UpsertProvider(p *Provider)
	DeleteProvider(id string) bool

	ListBanks() []*Bank
	GetBank(id string) *Bank
	UpsertBank(b *Bank)
	DeleteBank(id string) bool

	UpsertTheftPoints(ps []*TheftPoint)
	ListTheftPoints() []*TheftPoint

	AddUser(u *User)
	FindUserByEmail(email string) *User

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
