package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medcommons/pkg/domain-errors"
)

// Actor ids must be valid, non-empty, non-nil UUIDs; everything else is
// rejected at the trust boundary.
func TestParseActorID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseActorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseActorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseActorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.NewString()
		actor, err := ParseActorID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, actor.String())
		assert.False(t, actor.IsNil())
	})

	t.Run("round trips through text marshaling", func(t *testing.T) {
		actor, err := ParseActorID(uuid.NewString())
		require.NoError(t, err)

		text, err := actor.MarshalText()
		require.NoError(t, err)

		var decoded ActorID
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, actor, decoded)
	})
}

func TestSequenceIDs(t *testing.T) {
	assert.False(t, RecordID(0).IsValid())
	assert.False(t, RecordID(-3).IsValid())
	assert.True(t, RecordID(1).IsValid())

	assert.False(t, ProposalID(0).IsValid())
	assert.True(t, ProposalID(7).IsValid())
}

func FuzzParseActorID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(strings.Repeat("f", 36))
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		actor, err := ParseActorID(input)
		if err != nil {
			if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
				t.Fatalf("unexpected error code: %v", err)
			}
			return
		}
		if actor.IsNil() {
			t.Fatal("parse accepted the nil UUID")
		}
		reparsed, err := ParseActorID(actor.String())
		if err != nil {
			t.Fatalf("canonical form failed to reparse: %v", err)
		}
		if reparsed != actor {
			t.Fatalf("reparse mismatch: %v != %v", reparsed, actor)
		}
	})
}
