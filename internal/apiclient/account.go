package apiclient

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

type AccountService struct {
	client *Client
}

type LoginRequest struct {
	// Username also accepts an email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Access  string              `json:"access"`
	Refresh string              `json:"refresh"`
	User    *models.UserSummary `json:"user"`
}

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Login exchanges credentials for a token pair. It does not touch the session store.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := s.client.post(ctx, "account.login", "account/login/", LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) error {
	return s.client.post(ctx, "account.register", "account/register/", req, nil)
}

func (s *AccountService) Activate(ctx context.Context, uid, token string) (*MessageResponse, error) {
	var out MessageResponse
	if err := s.client.get(ctx, "account.activate", "activate/"+segment(uid)+"/"+segment(token)+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
