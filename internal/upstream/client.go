package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wahtabla/admin-gateway/internal/model"
)

// RetryPolicy controls re-delivery of failed upstream calls. Backoff maps
// the retry ordinal (1-based) to a delay. Only idempotent GETs are retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

func DefaultRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return baseDelay << (attempt - 1)
		},
	}
}

// Client talks to the upstream platform API. All endpoints speak the same
// JSON envelope: {success, statusCode, message, data, pagination}.
type Client struct {
	baseURL string
	http    *http.Client
	retry   RetryPolicy
}

func NewClient(baseURL string, timeout time.Duration, retry RetryPolicy) *Client {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if retry.Backoff == nil {
		retry.Backoff = func(int) time.Duration { return 0 }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		retry:   retry,
	}
}

type envelope struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode,omitempty"`
	Message    string            `json:"message,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body interface{}) (*envelope, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = encoded
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retry.MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.Backoff(attempt - 1)):
			}
		}
		env, retryable, err := c.roundTrip(ctx, method, path, token, payload)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, payload []byte) (*envelope, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, resp.StatusCode >= http.StatusInternalServerError, newStatusError(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return nil, false, fmt.Errorf("decode upstream response: %w", decodeErr)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "Invalid response from server"
		}
		return nil, false, errors.New(message)
	}
	return &env, false, nil
}

type authPayload struct {
	Admin  model.Admin      `json:"admin"`
	Tokens model.AuthTokens `json:"tokens"`
}

func (c *Client) Login(ctx context.Context, email, password string) (model.Admin, model.AuthTokens, error) {
	env, err := c.do(ctx, http.MethodPost, "/admin/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return model.Admin{}, model.AuthTokens{}, err
	}
	var data authPayload
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.Admin{}, model.AuthTokens{}, fmt.Errorf("decode login payload: %w", err)
	}
	return data.Admin, data.Tokens, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (model.Admin, model.AuthTokens, error) {
	env, err := c.do(ctx, http.MethodPost, "/admin/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return model.Admin{}, model.AuthTokens{}, err
	}
	var data authPayload
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.Admin{}, model.AuthTokens{}, fmt.Errorf("decode register payload: %w", err)
	}
	return data.Admin, data.Tokens, nil
}

// RefreshTokens exchanges a refresh token for a fresh pair. A StatusError
// here means the refresh token itself is dead and the session with it.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (model.AuthTokens, error) {
	env, err := c.do(ctx, http.MethodPost, "/admin/refresh-token", "", map[string]string{
		"adminRefreshToken": refreshToken,
	})
	if err != nil {
		return model.AuthTokens{}, err
	}
	var tokens model.AuthTokens
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		return model.AuthTokens{}, fmt.Errorf("decode refreshed tokens: %w", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return model.AuthTokens{}, errors.New("upstream returned a partial token pair")
	}
	return tokens, nil
}

func (c *Client) CurrentAdmin(ctx context.Context, accessToken string) (model.Admin, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil)
	if err != nil {
		return model.Admin{}, err
	}
	var admin model.Admin
	if err := json.Unmarshal(env.Data, &admin); err != nil {
		return model.Admin{}, fmt.Errorf("decode admin identity: %w", err)
	}
	return admin, nil
}

// Logout revokes the session upstream. Callers treat failures as
// best-effort and clear local state regardless.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/logout", accessToken, nil)
	return err
}

func (c *Client) ListAdmins(ctx context.Context, accessToken string) ([]model.Admin, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/users", accessToken, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Admins []model.Admin `json:"admins"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode admins payload: %w", err)
	}
	return data.Admins, nil
}

func (c *Client) ListStudents(ctx context.Context, accessToken string) (model.StudentsData, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/students", accessToken, nil)
	if err != nil {
		return model.StudentsData{}, err
	}
	var data model.StudentsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.StudentsData{}, fmt.Errorf("decode students payload: %w", err)
	}
	return data, nil
}

func (c *Client) ListExamAttempts(ctx context.Context, accessToken string, page, limit int) ([]model.ExamAttempt, model.Pagination, error) {
	path := "/admin/entrance-exam-attempts?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	env, err := c.do(ctx, http.MethodGet, path, accessToken, nil)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	var attempts []model.ExamAttempt
	if err := json.Unmarshal(env.Data, &attempts); err != nil {
		return nil, model.Pagination{}, fmt.Errorf("decode exam attempts payload: %w", err)
	}
	pagination := model.Pagination{Page: page, Limit: limit, Total: len(attempts), TotalPages: 1}
	if env.Pagination != nil {
		pagination = *env.Pagination
	}
	return attempts, pagination, nil
}

func (c *Client) GradeExamAttempt(ctx context.Context, accessToken string, req model.GradeRequest) (model.GradeResult, error) {
	env, err := c.do(ctx, http.MethodPut, "/admin/entrance-exam-attempts", accessToken, req)
	if err != nil {
		return model.GradeResult{}, err
	}
	var result model.GradeResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return model.GradeResult{}, fmt.Errorf("decode grade payload: %w", err)
	}
	return result, nil
}

func (c *Client) UpdateAdminRole(ctx context.Context, accessToken string, adminID int, role model.Role) (model.Admin, error) {
	env, err := c.do(ctx, http.MethodPatch, "/admin/role", accessToken, map[string]interface{}{
		"adminId": adminID,
		"role":    role,
	})
	if err != nil {
		return model.Admin{}, err
	}
	var data struct {
		Admin model.Admin `json:"admin"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.Admin{}, fmt.Errorf("decode role update payload: %w", err)
	}
	return data.Admin, nil
}
