package eventbus

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Metadata keys identifying the ledger a message belongs to.
const (
	UserIDMetadataKey       = "user_id"
	PuzzleTypeIDMetadataKey = "puzzle_type_id"
)

// ScopeToPair tags msg with the user and puzzle type it concerns so
// consumers can filter without decoding the payload.
func ScopeToPair(msg *message.Message, userID, puzzleTypeID uuid.UUID) {
	msg.Metadata.Set(UserIDMetadataKey, userID.String())
	msg.Metadata.Set(PuzzleTypeIDMetadataKey, puzzleTypeID.String())
}

// MatchesScope reports whether msg belongs to the given user and puzzle type.
// A nil filter matches anything.
func MatchesScope(msg *message.Message, userID, puzzleTypeID *uuid.UUID) bool {
	if userID != nil && msg.Metadata.Get(UserIDMetadataKey) != userID.String() {
		return false
	}
	if puzzleTypeID != nil && msg.Metadata.Get(PuzzleTypeIDMetadataKey) != puzzleTypeID.String() {
		return false
	}
	return true
}
