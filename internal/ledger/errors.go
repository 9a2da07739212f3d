package ledger

import "errors"

// Failure reasons surfaced to the API layer. All of them are user-facing and
// recoverable; nothing here is fatal to the process.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrHoldingNotFound     = errors.New("product instance not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrPhoneTaken        = errors.New("phone number already registered")
	ErrInvalidInviteCode = errors.New("invite code is not valid")
	ErrInvalidCredential = errors.New("credential is not valid")

	ErrLimitReached        = errors.New("purchase limit reached for this product")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSoldOut             = errors.New("product is sold out")

	ErrOutsideWithdrawalWindow = errors.New("outside the withdrawal window")
	ErrAmountOutOfRange        = errors.New("amount out of range")
	ErrWalletNotLinked         = errors.New("no withdrawal wallet linked")
	ErrWalletAlreadyLinked     = errors.New("withdrawal wallet already linked")
	ErrPasswordNotSet          = errors.New("withdrawal password not set")
	ErrPasswordAlreadySet      = errors.New("withdrawal password already set")

	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNotPending       = errors.New("transaction is not pending")
)
