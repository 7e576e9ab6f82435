package errors

import "errors"

var (
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidBoardSize   = errors.New("invalid board size")
	ErrAlreadyStarted     = errors.New("contest already started")
	ErrNotStarted         = errors.New("contest not started")
	ErrNotFinished        = errors.New("contest not finished")
	ErrRoleOccupied       = errors.New("role already occupied")
	ErrPlayerExists       = errors.New("player already in list")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrWrongTurn          = errors.New("not in player's turn")
	ErrWrongPlayer        = errors.New("player not allowed to act")
	ErrPositionOccupied   = errors.New("position already occupied")
	ErrUnconfirmedResult  = errors.New("previous result is not confirmed")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNoLocalParticipant = errors.New("no local participant")
	ErrNoPendingRequest   = errors.New("no pending request")
	ErrRequestOutstanding = errors.New("request already outstanding")
	ErrAmbiguousReceiver  = errors.New("receiver not found or ambiguous")
	ErrOpNotAllowed       = errors.New("operation not allowed for participant")
	ErrDeprecatedOp       = errors.New("operation is deprecated")
	ErrNotBotHostable     = errors.New("role is not locally hosted")
	ErrBotHosted          = errors.New("role is hosted by bot")
	ErrNoLegalMove        = errors.New("no legal move")
	ErrMalformedMessage   = errors.New("malformed message")
	ErrInvalidEvaluation  = errors.New("invalid evaluation")
	ErrRoomClosed         = errors.New("room closed")
	ErrResultMismatch     = errors.New("claimed result does not match")
	ErrInvalidName        = errors.New("invalid player name")
)

func Is(err, target error) bool {
	return errors.Is(err, target)
}
