package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevpoker/holdemd/internal/deck"
	"github.com/kevpoker/holdemd/internal/game"
)

func TestMarshalEventAddsInfoTag(t *testing.T) {
	t.Parallel()

	payload, err := marshalEvent(game.MoveInfo{
		PlayerID:   3,
		MoveType:   game.MoveBet,
		Value:      17,
		HandNumber: 2,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"info": "MoveInfo",
		"player_id": 3,
		"move_type": "Bet",
		"value": 17,
		"hand_number": 2
	}`, string(payload))
}

func TestMarshalEventCardsUseTextualForm(t *testing.T) {
	t.Parallel()

	payload, err := marshalEvent(game.HoleCardInfo{
		Cards:      []deck.Card{deck.MustParse("Ah"), deck.MustParse("Td")},
		HandNumber: 1,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"info": "HoleCardInfo",
		"cards": ["Ah", "Td"],
		"hand_number": 1
	}`, string(payload))
}

func TestMarshalEventStreetInfo(t *testing.T) {
	t.Parallel()

	payload, err := marshalEvent(game.StreetInfo{
		Street:             "Flop",
		Button:             1,
		BoardCardsRevealed: []deck.Card{deck.MustParse("2c"), deck.MustParse("5d"), deck.MustParse("9h")},
		HandNumber:         4,
	})
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, `"StreetInfo"`, string(fields["info"]))
	assert.Equal(t, `["2c","5d","9h"]`, string(fields["board_cards_revealed"]))
}
