package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kareemadel/istithmar-backend/internal/dto"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
)

// ledgerError maps ledger sentinels onto HTTP statuses and writes the
// standard error envelope.
func ledgerError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrProductNotFound),
		errors.Is(err, ledger.ErrHoldingNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, ledger.ErrInvalidCredential):
		status = fiber.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrLimitReached),
		errors.Is(err, ledger.ErrSoldOut),
		errors.Is(err, ledger.ErrOutsideWithdrawalWindow),
		errors.Is(err, ledger.ErrAmountOutOfRange),
		errors.Is(err, ledger.ErrWalletNotLinked),
		errors.Is(err, ledger.ErrWalletAlreadyLinked),
		errors.Is(err, ledger.ErrPasswordNotSet),
		errors.Is(err, ledger.ErrPasswordAlreadySet),
		errors.Is(err, ledger.ErrAlreadyCheckedIn),
		errors.Is(err, ledger.ErrNotPending),
		errors.Is(err, ledger.ErrInvalidInviteCode):
		status = fiber.StatusBadRequest
		message = err.Error()
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
