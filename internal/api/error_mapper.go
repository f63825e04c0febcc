package api

import (
	"errors"
	"net/http"

	"nft-marketplace/internal/marketplace"
	"nft-marketplace/internal/registry"
)

// ErrorCode represents unified API error codes
type ErrorCode string

const (
	ErrorCodeInvalidPrice    ErrorCode = "INVALID_PRICE"
	ErrorCodeAlreadyListed   ErrorCode = "ALREADY_LISTED"
	ErrorCodeNotListed       ErrorCode = "NOT_LISTED"
	ErrorCodeNotOwner        ErrorCode = "NOT_OWNER"
	ErrorCodeNotApproved     ErrorCode = "NOT_APPROVED"
	ErrorCodePriceNotMet     ErrorCode = "PRICE_NOT_MET"
	ErrorCodeNoProceeds      ErrorCode = "NO_PROCEEDS"
	ErrorCodeTransferFailed  ErrorCode = "TRANSFER_FAILED"
	ErrorCodeUnknownToken    ErrorCode = "UNKNOWN_TOKEN"
	ErrorCodeTokenExists     ErrorCode = "TOKEN_EXISTS"
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrorCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToHTTP maps ledger and registry errors to HTTP status codes and
// error responses
func MapErrorToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	switch {
	case errors.Is(err, marketplace.ErrInvalidPrice):
		return http.StatusBadRequest, errorResponse(ErrorCodeInvalidPrice, err)

	case errors.Is(err, marketplace.ErrAlreadyListed):
		return http.StatusConflict, errorResponse(ErrorCodeAlreadyListed, err)

	case errors.Is(err, marketplace.ErrNotListed):
		return http.StatusNotFound, errorResponse(ErrorCodeNotListed, err)

	case errors.Is(err, marketplace.ErrNotOwner):
		return http.StatusForbidden, errorResponse(ErrorCodeNotOwner, err)

	case errors.Is(err, marketplace.ErrNotApprovedForMarketplace):
		return http.StatusForbidden, errorResponse(ErrorCodeNotApproved, err)

	case errors.Is(err, marketplace.ErrPriceNotMet):
		return http.StatusBadRequest, errorResponse(ErrorCodePriceNotMet, err)

	case errors.Is(err, marketplace.ErrNoProceeds):
		return http.StatusBadRequest, errorResponse(ErrorCodeNoProceeds, err)

	case errors.Is(err, marketplace.ErrTransferFailed):
		return http.StatusBadGateway, errorResponse(ErrorCodeTransferFailed, err)

	case errors.Is(err, registry.ErrUnknownToken):
		return http.StatusNotFound, errorResponse(ErrorCodeUnknownToken, err)

	case errors.Is(err, registry.ErrTokenExists):
		return http.StatusConflict, errorResponse(ErrorCodeTokenExists, err)

	case errors.Is(err, registry.ErrNotTokenOwner):
		return http.StatusForbidden, errorResponse(ErrorCodeNotOwner, err)

	default:
		return http.StatusInternalServerError, errorResponse(ErrorCodeInternalError, err)
	}
}

func errorResponse(code ErrorCode, err error) ErrorResponse {
	return ErrorResponse{
		Code:    string(code),
		Message: err.Error(),
	}
}
