package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")

	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
	assert.Equal(t, "abc-123", ExtractCorrelationID(ctx).Value.String())
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
}

func TestCorrelationIDFromMsg(t *testing.T) {
	msg := message.NewMessage("1", nil)
	msg.Metadata.Set(CorrelationIDMetadataKey, "xyz")

	assert.Equal(t, "xyz", CorrelationIDFromMsg(msg).Value.String())
	assert.Equal(t, "", CorrelationIDFromMsg(nil).Value.String())
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
