package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniclaim/claimsync/internal/claims"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/turnover"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad args")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "db", errors.New("locked")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("locked")
	err := WrapExitError(ExitFailure, "open failed", cause)
	assert.Equal(t, "open failed: locked", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewExitError(ExitFailure, "bare").Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", claims.ErrPostNotFound), "post_not_found"},
		{turnover.ErrPostNotFound, "post_not_found"},
		{claims.ErrClaimNotFound, "claim_not_found"},
		{claims.ErrConversationNotFound, "conversation_not_found"},
		{store.ErrNotFound, "not_found"},
		{claims.ErrInvalidTransition, "invalid_transition"},
		{claims.ErrInvalidClaim, "invalid_claim"},
		{turnover.ErrWrongPostType, "wrong_post_type"},
		{turnover.ErrInvalidState, "invalid_state"},
		{fmt.Errorf("x: %w", turnover.ErrInvalidDestination), "invalid_destination"},
		{errors.New("disk full"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"added": 2}, "ignored in json"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"added": float64(2)}, resp.Data)

	buf.Reset()
	err := f.Fail("update failed", claims.ErrInvalidTransition)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_transition", resp.Error.Code)
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, diag bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &diag, Verbose: true}

	require.NoError(t, f.Success(nil, "line one", "line two"))
	assert.Equal(t, "line one\nline two\n", out.String())

	f.VerboseLog("detail %d", 7)
	assert.Equal(t, "detail 7\n", diag.String())

	err := f.Fail("sync failed", claims.ErrPostNotFound)
	assert.ErrorIs(t, err, claims.ErrPostNotFound)
	assert.Equal(t, "line one\nline two\n", out.String(), "text failures are printed by the caller")
}
