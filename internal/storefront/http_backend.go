package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"figurinha-studio/internal/domain"
)

// APIError is a non-2xx answer from the storefront API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps status codes onto the domain errors the server derived them from.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrNotSignedIn
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// HTTPBackend talks to the storefront HTTP API.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPBackend{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (b *HTTPBackend) SignIn(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	var out struct {
		AccessToken string          `json:"accessToken"`
		Profile     *domain.Profile `json:"profile"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := b.do(ctx, http.MethodPost, "/auth/token", "", body, &out); err != nil {
		return "", nil, err
	}
	if out.AccessToken == "" || out.Profile == nil {
		return "", nil, fmt.Errorf("sign in: incomplete response")
	}
	return out.AccessToken, out.Profile, nil
}

func (b *HTTPBackend) FetchCart(ctx context.Context, token string) (*domain.Cart, error) {
	return b.cartCall(ctx, http.MethodGet, "/me/cart", token, nil)
}

func (b *HTTPBackend) AddItem(ctx context.Context, token, packID string) (*domain.Cart, error) {
	return b.cartCall(ctx, http.MethodPost, "/me/cart/items", token, map[string]string{"packId": packID})
}

func (b *HTTPBackend) SetQuantity(ctx context.Context, token, packID string, quantity int) (*domain.Cart, error) {
	return b.cartCall(ctx, http.MethodPut, "/me/cart/items/"+url.PathEscape(packID), token, map[string]int{"quantity": quantity})
}

func (b *HTTPBackend) RemoveItem(ctx context.Context, token, packID string) (*domain.Cart, error) {
	return b.cartCall(ctx, http.MethodDelete, "/me/cart/items/"+url.PathEscape(packID), token, nil)
}

func (b *HTTPBackend) ClearCart(ctx context.Context, token string) (*domain.Cart, error) {
	return b.cartCall(ctx, http.MethodDelete, "/me/cart", token, nil)
}

func (b *HTTPBackend) cartCall(ctx context.Context, method, path, token string, body interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	if err := b.do(ctx, method, path, token, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
