package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

type Credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type Registration struct {
	UserName string        `json:"userName"`
	FullName string        `json:"fullName"`
	Password string        `json:"password"`
	Roles    []domain.Role `json:"roles"`
}

type loginData struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a session. The backend reports failures
// either as a non-2xx status or as a non-200 status inside the envelope.
func (c *Client) Login(ctx context.Context, creds Credentials) (*domain.Session, error) {
	if strings.TrimSpace(creds.UserName) == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: user name and password are required", ErrInvalidInput)
	}

	var data loginData
	env, err := c.do(ctx, http.MethodPost, "/login", creds, &data)
	if err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}
	if env.Status != http.StatusOK || data.Token == "" {
		return nil, &APIError{
			Method:     http.MethodPost,
			Path:       "/login",
			StatusCode: env.Status,
			Message:    env.Message,
		}
	}

	return &domain.Session{
		Token:    data.Token,
		UserName: data.User.UserName,
		FullName: data.User.FullName,
		Roles:    data.User.RoleNames(),
	}, nil
}

// NewRegistration builds a registration with the conventional role
// descriptions.
func NewRegistration(userName, fullName, password string, roles ...string) Registration {
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	reg := Registration{
		UserName: userName,
		FullName: fullName,
		Password: password,
	}
	for _, r := range roles {
		desc := "User role"
		if r == domain.RoleAdmin {
			desc = "Admin role"
		}
		reg.Roles = append(reg.Roles, domain.Role{RoleName: r, RoleDescription: desc})
	}
	return reg
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	if reg.UserName == "" || reg.FullName == "" || reg.Password == "" {
		return fmt.Errorf("%w: user name, full name and password are required", ErrInvalidInput)
	}
	env, err := c.do(ctx, http.MethodPost, "/registerNewUser", reg, nil)
	if err != nil {
		return err
	}
	if env.Status != http.StatusCreated {
		return &APIError{
			Method:     http.MethodPost,
			Path:       "/registerNewUser",
			StatusCode: env.Status,
			Message:    env.Message,
		}
	}
	return nil
}
