package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/session"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeNoDevice         = "NO_DEVICE"
	ErrCodeDisconnected     = "DEVICE_DISCONNECTED"
	ErrCodeRootFailed       = "ROOT_FAILED"
	ErrCodeRootRequired     = "ROOT_REQUIRED"
	ErrCodeMalformed        = "MALFORMED_OUTPUT"
	ErrCodeADBFailed        = "ADB_FAILED"
	ErrCodeSSHConnectionErr = "SSH_CONNECTION_FAILED"
	ErrCodeReportFailed     = "REPORT_FAILED"
	ErrCodeCommandFailed    = "COMMAND_FAILED"
	ErrCodeUnknown          = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	jsonErr := &JSONError{
		Code:    sentinelCode(err),
		Message: err.Error(),
	}

	var b2gErr *errors.Error
	if stderrors.As(err, &b2gErr) {
		jsonErr.Message = b2gErr.Message
		jsonErr.Suggestion = b2gErr.Suggestion
		if jsonErr.Code == ErrCodeUnknown {
			jsonErr.Code = mapErrorCode(b2gErr.Code, b2gErr.Message)
		}
	}
	return jsonErr
}

// sentinelCode maps the session and parser sentinels.
func sentinelCode(err error) string {
	switch {
	case stderrors.Is(err, session.ErrNoDevice):
		return ErrCodeNoDevice
	case stderrors.Is(err, session.ErrDisconnected):
		return ErrCodeDisconnected
	case stderrors.Is(err, session.ErrElevation):
		return ErrCodeRootFailed
	case stderrors.Is(err, b2ginfo.ErrRootRequired):
		return ErrCodeRootRequired
	case stderrors.Is(err, b2ginfo.ErrMalformed):
		return ErrCodeMalformed
	}
	return ErrCodeUnknown
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrDevice:
		return ErrCodeNoDevice
	case errors.ErrADB:
		return ErrCodeADBFailed
	case errors.ErrSSH:
		return ErrCodeSSHConnectionErr
	case errors.ErrReport:
		return ErrCodeReportFailed
	case errors.ErrParse:
		return ErrCodeMalformed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}
	return ErrCodeUnknown
}
