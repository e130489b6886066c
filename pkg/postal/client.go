package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

const (
	defaultBaseURL              = "https://viacep.com.br/ws"
	responseBodyReadLimit int64 = 1024
)

// Client resolves Brazilian postal codes (CEP) through the ViaCEP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the lookup base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the postal code client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Address is the resolved street-level data for a CEP.
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// NormalizeCEP strips formatting and validates the 8-digit shape.
func NormalizeCEP(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(cleaned) != 8 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "postal code must have 8 digits")
	}
	return cleaned, nil
}

// Lookup resolves a CEP into street-level address data. A CEP that is
// well-formed but unknown returns CodeNotFound.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "postal client not configured")
	}
	normalized, err := NormalizeCEP(cep)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/json/", strings.TrimRight(c.baseURL, "/"), normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build postal lookup request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute postal lookup request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "postal lookup failed")
	}

	// The upstream API signals a miss with {"erro": true}, historically also
	// as the string "true", so the flag is decoded leniently.
	var apiResp struct {
		CEP          string          `json:"cep"`
		Street       string          `json:"logradouro"`
		Complement   string          `json:"complemento"`
		Neighborhood string          `json:"bairro"`
		City         string          `json:"localidade"`
		State        string          `json:"uf"`
		NotFound     json.RawMessage `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode postal lookup response")
	}
	if flag := strings.Trim(string(apiResp.NotFound), `"`); flag == "true" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "postal code not found")
	}

	return &Address{
		PostalCode:   normalized,
		Street:       apiResp.Street,
		Complement:   apiResp.Complement,
		Neighborhood: apiResp.Neighborhood,
		City:         apiResp.City,
		State:        apiResp.State,
	}, nil
}
