package cli

import (
	"time"

	"golang.org/x/oauth2"
)

// ---------------------------------------------------------------------------
// Auth status JSON type (auth status)
// ---------------------------------------------------------------------------

type jsonAuthStatus struct {
	Authenticated   bool   `json:"authenticated"`
	Valid           bool   `json:"valid"`
	HasRefreshToken bool   `json:"has_refresh_token"`
	Expiry          string `json:"expiry,omitempty"`
	TokenStore      string `json:"token_store"`
}

func toJSONAuthStatus(tok *oauth2.Token, tokenStore string) jsonAuthStatus {
	st := jsonAuthStatus{TokenStore: tokenStore}
	if tok == nil {
		return st
	}
	st.Authenticated = true
	st.Valid = tok.Valid()
	st.HasRefreshToken = tok.RefreshToken != ""
	if !tok.Expiry.IsZero() {
		st.Expiry = tok.Expiry.Format(time.RFC3339)
	}
	return st
}

// ---------------------------------------------------------------------------
// Validation JSON type (locations validate)
// ---------------------------------------------------------------------------

type jsonValidation struct {
	Location string   `json:"location"`
	Complete bool     `json:"complete"`
	Issues   []string `json:"issues"`
}

func toJSONValidation(location string, issues []string) jsonValidation {
	if issues == nil {
		issues = []string{}
	}
	return jsonValidation{Location: location, Complete: len(issues) == 0, Issues: issues}
}

// ---------------------------------------------------------------------------
// Action JSON type (login, revoke, reply, set-hours, set-contact)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK       bool   `json:"ok"`
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Review   string `json:"review,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
}
