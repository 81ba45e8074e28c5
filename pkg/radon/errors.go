package radon

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a radon failure mode.
type ErrorCode string

const (
	// ToolNotFound means the configured executable could not be located.
	ToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// UnsupportedToolVersion means radon is older than MinVersion.
	UnsupportedToolVersion ErrorCode = "UNSUPPORTED_TOOL_VERSION"
	// ToolInvocationFailed means a query exited non-zero or printed unparsable output.
	ToolInvocationFailed ErrorCode = "TOOL_INVOCATION_FAILED"
)

// FixActionType is the kind of remediation offered to the user.
type FixActionType string

const (
	// EditSettings points the user at the executable setting.
	EditSettings FixActionType = "edit-settings"
	// InstallTool runs the install command.
	InstallTool FixActionType = "install-tool"
)

// FixAction is one remediation choice presented with an error.
type FixAction struct {
	Type    FixActionType `json:"type" toon:"type"`
	Label   string        `json:"label" toon:"label"`
	Command string        `json:"command,omitempty" toon:"command,omitempty"`
	Setting string        `json:"setting,omitempty" toon:"setting,omitempty"`
}

// Error is a radon failure with a stable code and suggested fixes.
type Error struct {
	Code           ErrorCode   `json:"code" toon:"code"`
	Message        string      `json:"message" toon:"message"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty" toon:"suggestedFixes,omitempty"`
	cause          error
}

// NewError creates an Error wrapping cause.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// DefaultInstallCommand installs a supported radon for the current user.
const DefaultInstallCommand = `pip install --user "radon>=5.1"`

// ErrorActions maps codes to the remediation choices shown to the user.
var ErrorActions = map[ErrorCode][]FixAction{
	ToolNotFound: {
		{Type: EditSettings, Label: "Edit settings", Setting: "radon.executable"},
		{Type: InstallTool, Label: "Install Radon", Command: DefaultInstallCommand},
	},
	UnsupportedToolVersion: {
		{Type: EditSettings, Label: "Edit settings", Setting: "radon.executable"},
		{Type: InstallTool, Label: "Install Radon", Command: DefaultInstallCommand},
	},
}

// GetSuggestedFixes returns the remediation choices for a code.
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return append([]FixAction(nil), fixes...)
	}
	return nil
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// withInstallCommand points the error's install fix at cmd. Other fixes are kept.
func (e *Error) withInstallCommand(cmd string) *Error {
	if cmd == "" {
		return e
	}
	for i := range e.SuggestedFixes {
		if e.SuggestedFixes[i].Type == InstallTool {
			e.SuggestedFixes[i].Command = cmd
		}
	}
	return e
}

// IsRemediable reports whether err can be fixed by reconfiguring or installing radon.
func IsRemediable(err error) bool {
	switch CodeOf(err) {
	case ToolNotFound, UnsupportedToolVersion:
		return true
	}
	return false
}
