package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCreateEventRequest() CreateEventRequest {
	return CreateEventRequest{
		Title:    "Will BTC close above $100k on Dec 31?",
		Slug:     "btc-100k-dec-31",
		Category: "crypto",
		ClosesAt: time.Now().Add(24 * time.Hour),
		Outcomes: []CreateOutcomeRequest{
			{Label: "Yes", PriceBps: 6300},
			{Label: "No", PriceBps: 3700},
		},
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	assert.NoError(t, validCreateEventRequest().Validate())

	req := validCreateEventRequest()
	req.Category = "weather"
	assert.Error(t, req.Validate())

	req = validCreateEventRequest()
	req.Outcomes = req.Outcomes[:1]
	assert.Error(t, req.Validate(), "an event needs at least two outcomes")

	req = validCreateEventRequest()
	req.Outcomes[0].PriceBps = 10001
	assert.Error(t, req.Validate(), "price is bounded at 10000 bps")
}

func TestPlacePositionRequest_Validate(t *testing.T) {
	req := PlacePositionRequest{OutcomeID: "out_1", Side: "buy", Shares: 100}
	assert.NoError(t, req.Validate())

	req.Side = "hold"
	assert.Error(t, req.Validate())

	req.Side = "sell"
	req.Shares = 0
	assert.Error(t, req.Validate())
}

func TestListEventsQuery_Validate(t *testing.T) {
	assert.NoError(t, ListEventsQuery{}.Validate())
	assert.NoError(t, ListEventsQuery{Category: "crypto", Status: "open", Page: 1, Limit: 20}.Validate())
	assert.Error(t, ListEventsQuery{Status: "archived"}.Validate())
	assert.Error(t, ListEventsQuery{Limit: 500}.Validate())
}
