package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uniclaim/claimsync/internal/model"
)

// timeLayout is fixed-width so TEXT ordering matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// marshalJSON encodes v without HTML escaping, since claim reasons and
// names are stored verbatim.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalClaims converts a claim history to JSON TEXT. A nil history is
// stored as an empty array.
func marshalClaims(claims []model.ClaimRecord) (string, error) {
	if claims == nil {
		claims = []model.ClaimRecord{}
	}
	data, err := marshalJSON(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	return data, nil
}

// unmarshalClaims parses JSON TEXT to a claim history, never returning nil.
func unmarshalClaims(data string) ([]model.ClaimRecord, error) {
	claims := []model.ClaimRecord{}
	if data == "" {
		return claims, nil
	}
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}
	return claims, nil
}

func marshalTurnover(t *model.TurnoverDetails) (sql.NullString, error) {
	if t == nil {
		return sql.NullString{}, nil
	}
	data, err := marshalJSON(t)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal turnover: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, nil
}

func unmarshalTurnover(data sql.NullString) (*model.TurnoverDetails, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var t model.TurnoverDetails
	if err := json.Unmarshal([]byte(data.String), &t); err != nil {
		return nil, fmt.Errorf("unmarshal turnover: %w", err)
	}
	return &t, nil
}

func marshalClaimData(c *model.ClaimData) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	data, err := marshalJSON(c)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal claim data: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, nil
}

func unmarshalClaimData(data sql.NullString) (*model.ClaimData, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var c model.ClaimData
	if err := json.Unmarshal([]byte(data.String), &c); err != nil {
		return nil, fmt.Errorf("unmarshal claim data: %w", err)
	}
	return &c, nil
}

func marshalParticipants(p []string) (string, error) {
	if p == nil {
		p = []string{}
	}
	data, err := marshalJSON(p)
	if err != nil {
		return "", fmt.Errorf("marshal participants: %w", err)
	}
	return data, nil
}

func unmarshalParticipants(data string) ([]string, error) {
	p := []string{}
	if data == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	return p, nil
}
