package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

// storedIdentity is the JSON layout of the current_user key. The id is kept as
// raw JSON so records written with numeric ids still decode.
type storedIdentity struct {
	ID         json.RawMessage   `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Role       string            `json:"role"`
	UnitNumber string            `json:"unit_number,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func encodeIdentity(id *domain.Identity) ([]byte, error) {
	rawID, err := json.Marshal(id.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(storedIdentity{
		ID:         rawID,
		Email:      id.Email,
		Name:       id.Name,
		Role:       id.Role.String(),
		UnitNumber: id.UnitNumber,
		Phone:      id.Phone,
		Attributes: id.Attributes,
	})
}

// decodeIdentity parses and validates a stored identity. An unknown but
// non-empty role is returned alongside domain.ErrUnknownRole; every other
// validation failure is domain.ErrMalformedSession.
func decodeIdentity(data []byte) (*domain.Identity, error) {
	var s storedIdentity
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	id, err := parseOpaqueID(s.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	if strings.TrimSpace(s.Email) == "" {
		return nil, fmt.Errorf("%w: missing email", domain.ErrMalformedSession)
	}
	role, roleErr := domain.ParseRole(s.Role)
	if errors.Is(roleErr, domain.ErrMissingRole) {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, roleErr)
	}
	identity := &domain.Identity{
		ID:         id,
		Email:      s.Email,
		Name:       s.Name,
		Role:       role,
		UnitNumber: s.UnitNumber,
		Phone:      s.Phone,
		Attributes: s.Attributes,
	}
	return identity, roleErr
}

// parseOpaqueID accepts a JSON string or number.
func parseOpaqueID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if strings.TrimSpace(str) == "" {
			return "", errors.New("empty id")
		}
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("id is neither string nor number: %s", raw)
	}
	return num.String(), nil
}

// identityFromBackend normalises the backend's user object. Missing ids,
// emails or roles mean the backend broke its contract.
func identityFromBackend(u ports.BackendUser) (*domain.Identity, error) {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Email) == "" {
		return nil, errors.New("backend user lacks id or email")
	}
	role, err := domain.ParseRole(u.Role)
	if errors.Is(err, domain.ErrMissingRole) {
		return nil, err
	}
	return &domain.Identity{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       role,
		UnitNumber: u.UnitNumber,
		Phone:      u.Phone,
		Attributes: u.Extra,
	}, err
}

// tokenExpired reports whether a JWT access token carries an exp claim in the
// past. Opaque tokens never expire from the portal's point of view; the
// backend is the authority and answers with 401.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
