package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeStorageError       ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// Molecule / featurization error codes.
const (
	ErrCodeInvalidSMILES       ErrorCode = "MOL_001"
	ErrCodeEmptyMolecule       ErrorCode = "MOL_002"
	ErrCodeMoleculeTooLarge    ErrorCode = "MOL_003"
	ErrCodeFeaturizationFailed ErrorCode = "MOL_004"
	ErrCodeSolventUnknown      ErrorCode = "MOL_005"
)

// Model / inference error codes.
const (
	ErrCodeModelNotLoaded    ErrorCode = "MODEL_001"
	ErrCodeBatchMismatch     ErrorCode = "MODEL_002"
	ErrCodeDimensionMismatch ErrorCode = "MODEL_003"
	ErrCodePredictionFailed  ErrorCode = "MODEL_004"
	ErrCodeCheckpointInvalid ErrorCode = "MODEL_005"
)

// Aliases used by the generic factory functions.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInvalidSMILES:       http.StatusBadRequest,
	ErrCodeEmptyMolecule:       http.StatusBadRequest,
	ErrCodeMoleculeTooLarge:    http.StatusBadRequest,
	ErrCodeFeaturizationFailed: http.StatusBadRequest,
	ErrCodeSolventUnknown:      http.StatusNotFound,

	ErrCodeModelNotLoaded:    http.StatusServiceUnavailable,
	ErrCodeBatchMismatch:     http.StatusInternalServerError,
	ErrCodeDimensionMismatch: http.StatusInternalServerError,
	ErrCodePredictionFailed:  http.StatusInternalServerError,
	ErrCodeCheckpointInvalid: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInvalidSMILES:       "invalid SMILES format",
	ErrCodeEmptyMolecule:       "molecule has no atoms",
	ErrCodeMoleculeTooLarge:    "molecule exceeds atom limit",
	ErrCodeFeaturizationFailed: "failed to featurize molecule",
	ErrCodeSolventUnknown:      "solvent not in registry",

	ErrCodeModelNotLoaded:    "model not loaded",
	ErrCodeBatchMismatch:     "solute and solvent batches are misaligned",
	ErrCodeDimensionMismatch: "feature dimensions do not match model configuration",
	ErrCodePredictionFailed:  "prediction failed",
	ErrCodeCheckpointInvalid: "checkpoint is invalid or corrupt",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
