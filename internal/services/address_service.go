// internal/services/address_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adotepet/adotepet-backend/internal/apperrors"
)

const viaCEPBaseURL = "https://viacep.com.br/ws"

// Address is the normalized result of a CEP lookup.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type viaCEPResponse struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        bool   `json:"erro,omitempty"`
}

// AddressService resolves Brazilian postal codes through the public ViaCEP API.
type AddressService struct {
	client  *http.Client
	baseURL string
}

func NewAddressService() *AddressService {
	return &AddressService{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: viaCEPBaseURL,
	}
}

// Lookup fetches the address for a CEP. The CEP may contain the usual
// 01001-000 hyphen; it is stripped before the request.
func (s *AddressService) Lookup(ctx context.Context, cep string) (*Address, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(cep), "-", "")
	if len(normalized) != 8 {
		return nil, apperrors.New(apperrors.CodeNotFound, "invalid CEP format")
	}

	url := fmt.Sprintf("%s/%s/json/", s.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEP request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CEP lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CEP service returned status %d", resp.StatusCode)
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode CEP response: %w", err)
	}

	// ViaCEP returns 200 with {"erro": true} for unknown codes
	if payload.Erro {
		return nil, apperrors.New(apperrors.CodeNotFound, "CEP not found")
	}

	return &Address{
		CEP:          payload.CEP,
		Street:       payload.Logradouro,
		Complement:   payload.Complemento,
		Neighborhood: payload.Bairro,
		City:         payload.Localidade,
		State:        payload.UF,
	}, nil
}
