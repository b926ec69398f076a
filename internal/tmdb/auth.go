package tmdb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mmcdole/reelkeep/internal/domain"
	"golang.org/x/term"
)

// CreateRequestToken starts the session flow
func (c *Client) CreateRequestToken(ctx context.Context) (string, error) {
	var resp RequestTokenResponse
	if err := c.getJSON(ctx, "/authentication/token/new", nil, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.RequestToken == "" {
		return "", fmt.Errorf("%w: request token was not issued", domain.ErrAuthFailed)
	}
	return resp.RequestToken, nil
}

// ValidateWithLogin approves a request token with account credentials
func (c *Client) ValidateWithLogin(ctx context.Context, username, password, requestToken string) (string, error) {
	body := map[string]string{
		"username":      username,
		"password":      password,
		"request_token": requestToken,
	}
	var resp RequestTokenResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/authentication/token/validate_with_login", nil, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", domain.ErrAuthFailed
	}
	return resp.RequestToken, nil
}

// CreateSession exchanges an approved request token for a session ID
func (c *Client) CreateSession(ctx context.Context, requestToken string) (string, error) {
	var resp SessionResponse
	body := map[string]string{"request_token": requestToken}
	if err := c.sendJSON(ctx, http.MethodPost, "/authentication/session/new", nil, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.SessionID == "" {
		return "", domain.ErrAuthFailed
	}
	return resp.SessionID, nil
}

// Account resolves the account behind a session ID
func (c *Client) Account(ctx context.Context, sessionID string) (*AccountResponse, error) {
	query := url.Values{"session_id": {sessionID}}
	var resp AccountResponse
	if err := c.getJSON(ctx, "/account", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login runs the request token -> validate -> session -> account sequence
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	token, err := c.CreateRequestToken(ctx)
	if err != nil {
		return nil, err
	}
	token, err = c.ValidateWithLogin(ctx, username, password, token)
	if err != nil {
		return nil, err
	}
	sessionID, err := c.CreateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	account, err := c.Account(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session := domain.Session{SessionID: sessionID, AccountID: account.ID, Username: account.Username}
	c.SetSession(session)
	return &session, nil
}

// AuthFlow implements domain.AuthFlow with an interactive username/password prompt
type AuthFlow struct {
	client *Client
	logger *slog.Logger

	in           io.Reader
	out          io.Writer
	readPassword func() ([]byte, error)
}

// NewAuthFlow creates a terminal-driven authentication flow
func NewAuthFlow(client *Client, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{
		client: client,
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

// Run prompts for credentials and establishes a session.
func (f *AuthFlow) Run(ctx context.Context) (*domain.Session, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "TMDB Authentication")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━━━━━━")

	reader := bufio.NewReader(f.in)
	fmt.Fprint(f.out, "Username: ")
	username, err := reader.ReadString('\n')
	if err != nil && username == "" {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)

	// Hidden input
	fmt.Fprint(f.out, "Password: ")
	passwordBytes, err := f.readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(f.out)

	session, err := f.client.Login(ctx, username, string(passwordBytes))
	if err != nil {
		f.logger.Error("tmdb login failed", "error", err, "username", username)
		return nil, err
	}

	f.logger.Info("tmdb login succeeded", "username", session.Username, "accountID", session.AccountID)
	fmt.Fprintln(f.out, "Authentication successful!")
	return session, nil
}
