package api

import "github.com/protectmyphone/pmp/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	u := a.store.FindUserByEmail(email)
	if u == nil {
		return nil, nil
	}
	return &services.User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, CreatedAt: u.CreatedAt}, nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	a.store.AddUser(&User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, CreatedAt: u.CreatedAt})
	return nil
}
