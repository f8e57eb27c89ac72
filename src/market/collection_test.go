package market

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rawEvent(section, method string, args ...string) *RawCollectionEvent {
	raw := &RawCollectionEvent{
		Section:     section,
		Method:      method,
		BlockNumber: 2000,
		Args:        make(map[string]json.RawMessage),
	}
	for i, arg := range args {
		raw.Args[string(rune('0'+i))] = json.RawMessage(arg)
	}
	return raw
}

func TestTransformTransfer(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "Transfer",
		`7`, `42`, `{"substrate":"5FromAddr"}`, `{"ethereum":"0xToAddr"}`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventTransfer, event.Kind)
	assert.Equal(t, uint32(7), event.CollectionId)
	assert.Equal(t, uint32(42), event.TokenId)
	assert.Equal(t, "5FromAddr", event.From)
	assert.Equal(t, "0xToAddr", event.To)
	assert.Equal(t, uint64(2000), event.BlockNumber)
}

func TestTransformApproved(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "Approved",
		`7`, `42`, `"5Owner"`, `"5Approved"`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventApproved, event.Kind)
	assert.Equal(t, "5Owner", event.Owner)
	assert.Equal(t, "5Approved", event.Approved)
}

func TestTransformItemDestroyed(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "ItemDestroyed",
		`7`, `42`, `"5Owner"`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventItemDestroyed, event.Kind)
	assert.Equal(t, uint32(7), event.CollectionId)
	assert.Equal(t, uint32(42), event.TokenId)
}

func TestTransformCollectionDestroyed(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "CollectionDestroyed", `7`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventCollectionDestroyed, event.Kind)
	assert.Equal(t, uint32(7), event.CollectionId)
}

func TestTransformItemCreated(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "ItemCreated",
		`7`, `42`, `{"substrate":"5Owner","ethereum":"0xMirror"}`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventItemCreated, event.Kind)

	// Substrate side wins when both representations are present
	assert.Equal(t, "5Owner", event.Owner)
}

func TestTransformQuotedNumbers(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "ItemCreated",
		`"7"`, `"42"`, `"5Owner"`))

	assert.NoError(t, err)
	assert.Equal(t, uint32(7), event.CollectionId)
	assert.Equal(t, uint32(42), event.TokenId)
}

func TestTransformUnrecognizedMethod(t *testing.T) {
	event, err := TransformCollectionEvent(rawEvent("common", "SomethingNew", `7`))

	assert.NoError(t, err)
	assert.Equal(t, CollectionEventUnrecognized, event.Kind)
	assert.Equal(t, uint64(2000), event.BlockNumber)
}

func TestTransformMissingArgument(t *testing.T) {
	_, err := TransformCollectionEvent(rawEvent("common", "Transfer", `7`, `42`))
	assert.Error(t, err)
}
