package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"joyeria/internal/domain"
	"joyeria/internal/repos"
)

// Shoppers never sign in; sessions carry a cart. Only back-office staff bind a
// user to their session.
var (
	ErrBadCreds = errors.New("invalid email or password")
	ErrNotStaff = errors.New("account has no back-office access")
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// SignIn binds sid to the staff account matching the credentials.
func (s *AuthService) SignIn(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if u.Role != domain.RoleAdmin {
		return nil, ErrNotStaff
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) SignOut(sid string) error {
	return s.Users.UnbindSession(sid)
}

// Staff returns the back-office account bound to sid, if any.
func (s *AuthService) Staff(sid string) (*domain.User, bool) {
	if sid == "" {
		return nil, false
	}
	u, err := s.Users.SessionUser(sid)
	if err != nil || u.Role != domain.RoleAdmin {
		return nil, false
	}
	return u, true
}
