package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Upload errors (2000-2999)
	ErrUploadNoFile           = 2000
	ErrUploadInvalidMimeType  = 2001
	ErrUploadEncodingFailed   = 2002
	ErrUploadValidationFailed = 2003
	ErrUploadDuplicateImage   = 2004
	ErrUploadProcessingFailed = 2005

	// Session errors (3000-3999)
	ErrSessionNotFound = 3000
	ErrSessionExpired  = 3001
	ErrSessionTerminal = 3002
	ErrSessionBadChunk = 3003

	// Image errors (4000-4999)
	ErrImageNotFound = 4000

	// Storage errors (5000-5999)
	ErrStorageBlobFailed     = 5000
	ErrStorageMetadataFailed = 5001
	ErrStorageDeleteFailed   = 5002
	ErrStorageSignURLFailed  = 5003
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Upload errors
	ErrUploadNoFile:           {ErrUploadNoFile, http.StatusBadRequest, "No file provided"},
	ErrUploadInvalidMimeType:  {ErrUploadInvalidMimeType, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, and HEIC images are allowed"},
	ErrUploadEncodingFailed:   {ErrUploadEncodingFailed, http.StatusUnprocessableEntity, "Failed to decode image"},
	ErrUploadValidationFailed: {ErrUploadValidationFailed, http.StatusBadRequest, "Image validation failed"},
	ErrUploadDuplicateImage:   {ErrUploadDuplicateImage, http.StatusBadRequest, "Duplicate image detected"},
	ErrUploadProcessingFailed: {ErrUploadProcessingFailed, http.StatusInternalServerError, "Image processing failed"},

	// Session errors
	ErrSessionNotFound: {ErrSessionNotFound, http.StatusNotFound, "Upload session not found"},
	ErrSessionExpired:  {ErrSessionExpired, http.StatusGone, "Upload session expired"},
	ErrSessionTerminal: {ErrSessionTerminal, http.StatusConflict, "Upload session already finished"},
	ErrSessionBadChunk: {ErrSessionBadChunk, http.StatusBadRequest, "Invalid chunk"},

	// Image errors
	ErrImageNotFound: {ErrImageNotFound, http.StatusNotFound, "Image not found"},

	// Storage errors
	ErrStorageBlobFailed:     {ErrStorageBlobFailed, http.StatusInternalServerError, "Blob storage operation failed"},
	ErrStorageMetadataFailed: {ErrStorageMetadataFailed, http.StatusInternalServerError, "Metadata storage operation failed"},
	ErrStorageDeleteFailed:   {ErrStorageDeleteFailed, http.StatusInternalServerError, "Storage delete operation failed"},
	ErrStorageSignURLFailed:  {ErrStorageSignURLFailed, http.StatusInternalServerError, "Failed to generate signed URL"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
