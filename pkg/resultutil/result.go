package resultutil

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/dispatch"
)

// Result represents a common tool execution result that can be converted to
// an MCP result.
type Result struct {
	// Data holds the structured result data (only set for successful results)
	Data any
	// JSONText holds the JSON string representation of Data
	JSONText string
	// Error holds any error that occurred (nil for successful results)
	Error error
}

// NewSuccessResult creates a successful result with structured data.
// The data will be automatically marshaled to JSON.
// If marshaling fails, an error result is returned instead.
func NewSuccessResult(data any) *Result {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return &Result{
			Error: fmt.Errorf("failed to marshal result: %w", err),
		}
	}

	return &Result{
		Data:     data,
		JSONText: string(jsonBytes),
	}
}

// NewErrorResult creates an error result with the given error.
func NewErrorResult(err error) *Result {
	return &Result{
		Error: err,
	}
}

// FromOutcome converts a dispatch outcome. Validation errors become error
// results; executor results pass through as structured data, including those
// carrying an error status — the tool contract returns the result object
// itself, not a protocol error, for backend failures.
func FromOutcome(out dispatch.Outcome) *Result {
	if out.Err != nil {
		return NewErrorResult(out.Err)
	}
	return NewSuccessResult(out.Result)
}

// ToMCPResult converts the Result to an MCP CallToolResult.
// Returns (result, nil) following the MCP pattern where errors
// are encoded in the result, not the error return value.
func (r *Result) ToMCPResult() (*mcp.CallToolResult, error) {
	if r.Error != nil {
		//nolint:nilerr // MCP pattern encodes errors in result, not error return
		return mcp.NewToolResultError(r.Error.Error()), nil
	}
	return mcp.NewToolResultStructured(r.Data, r.JSONText), nil
}

// IsError returns true if the result represents an error.
func (r *Result) IsError() bool {
	return r.Error != nil
}
