package sim

import (
	"errors"

	"corsairs/server/internal/storage"
	"corsairs/server/internal/world"
)

// RejectClass groups rejection codes by what the client should do about them.
type RejectClass string

const (
	// RejectValidation covers malformed or out-of-range requests; the
	// connection stays open and the client should fix the request.
	RejectValidation RejectClass = "validation"
	// RejectConflict covers identity collisions; the client must pick another
	// name or register anew.
	RejectConflict RejectClass = "conflict"
	// RejectState covers requests that are well-formed but impossible in the
	// current world state; nothing was mutated.
	RejectState RejectClass = "state"
)

// Rejection codes, stable across protocol versions.
const (
	CodeNameLength        = "nameLength"
	CodeNameTaken         = "nameTaken"
	CodeUnknownClass      = "unknownClass"
	CodeUnknownPlayer     = "unknownPlayer"
	CodePlayerRemoved     = "playerRemoved"
	CodeMalformed         = "malformed"
	CodeShipUnavailable   = "shipUnavailable"
	CodeUnknownPort       = "unknownPort"
	CodeUnknownGood       = "unknownGood"
	CodeTooFarFromPort    = "tooFarFromPort"
	CodeInvalidQuantity   = "invalidQuantity"
	CodeInsufficientStock = "insufficientStock"
	CodeInsufficientGold  = "insufficientGold"
	CodeCargoFull         = "cargoFull"
	CodeInsufficientGoods = "insufficientGoods"
	CodeStorageFailure    = "storageFailure"
)

// Reject is a typed refusal returned across the session boundary instead of
// a raw error. It never aborts the tick loop.
type Reject struct {
	Class   RejectClass `json:"class"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

func (r *Reject) Error() string {
	if r == nil {
		return ""
	}
	return string(r.Class) + "/" + r.Code + ": " + r.Message
}

func validationReject(code, message string) *Reject {
	return &Reject{Class: RejectValidation, Code: code, Message: message}
}

func conflictReject(code, message string) *Reject {
	return &Reject{Class: RejectConflict, Code: code, Message: message}
}

func stateReject(code, message string) *Reject {
	return &Reject{Class: RejectState, Code: code, Message: message}
}

// rejectFromTradeErr maps world trade validation errors onto the wire
// taxonomy. Unknown errors surface as storage failures so the client retries.
func rejectFromTradeErr(err error) *Reject {
	switch {
	case errors.Is(err, world.ErrShipUnavailable):
		return stateReject(CodeShipUnavailable, "ship is sunk or not connected")
	case errors.Is(err, world.ErrUnknownPort):
		return validationReject(CodeUnknownPort, "unknown port")
	case errors.Is(err, world.ErrUnknownGood):
		return validationReject(CodeUnknownGood, "unknown good")
	case errors.Is(err, world.ErrInvalidQuantity):
		return validationReject(CodeInvalidQuantity, "quantity must be positive")
	case errors.Is(err, world.ErrTooFarFromPort):
		return stateReject(CodeTooFarFromPort, "too far from port")
	case errors.Is(err, world.ErrInsufficientStock), errors.Is(err, storage.ErrInsufficientStock):
		return stateReject(CodeInsufficientStock, "insufficient stock")
	case errors.Is(err, world.ErrInsufficientGold):
		return stateReject(CodeInsufficientGold, "insufficient gold")
	case errors.Is(err, world.ErrCargoFull):
		return stateReject(CodeCargoFull, "insufficient cargo space")
	case errors.Is(err, world.ErrInsufficientGoods):
		return stateReject(CodeInsufficientGoods, "insufficient goods to sell")
	default:
		return stateReject(CodeStorageFailure, "storage temporarily unavailable")
	}
}
