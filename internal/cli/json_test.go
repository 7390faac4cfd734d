package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/session"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]string{"serial": "3a4b5c6d"}))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "3a4b5c6d", data["serial"])
}

func TestErrorToJSON(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config not found",
			err:        errors.New(errors.ErrConfig, "Config file not found", "Run b2gmon init"),
			code:       ErrCodeConfigNotFound,
			message:    "Config file not found",
			suggestion: "Run b2gmon init",
		},
		{
			name:    "config invalid",
			err:     errors.New(errors.ErrConfig, "Interval can't be negative: -1s", ""),
			code:    ErrCodeConfigInvalid,
			message: "Interval can't be negative: -1s",
		},
		{
			name:    "disconnected sentinel wins over code",
			err:     fmt.Errorf("%w: %w", session.ErrDisconnected, errors.New(errors.ErrDevice, "Device: abc disconnected", "")),
			code:    ErrCodeDisconnected,
			message: "Device: abc disconnected",
		},
		{
			name: "root failed",
			err:  fmt.Errorf("%w", session.ErrElevation),
			code: ErrCodeRootFailed,
		},
		{
			name: "malformed",
			err:  fmt.Errorf("parse: %w", b2ginfo.ErrMalformed),
			code: ErrCodeMalformed,
		},
		{
			name: "report",
			err:  errors.New(errors.ErrReport, "Couldn't write report", ""),
			code: ErrCodeReportFailed,
		},
		{
			name:    "plain error",
			err:     stderrors.New("boom"),
			code:    ErrCodeUnknown,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, got.Message)
			}
			assert.Equal(t, tt.suggestion, got.Suggestion)
		})
	}

	assert.Nil(t, ErrorToJSON(nil))
}
