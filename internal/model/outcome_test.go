package model

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestTallyAdd(t *testing.T) {
	var tally Tally
	tally.Add(Outcome{Kind: OutcomeInserted})
	tally.Add(Outcome{Kind: OutcomeInserted})
	tally.Add(Outcome{Kind: OutcomeDuplicate})
	tally.Add(Outcome{Kind: OutcomeFailed, Reason: errors.New("boom")})

	assert.Equal(t, 2, tally.Inserted)
	assert.Equal(t, 1, tally.Duplicate)
	assert.Equal(t, 1, tally.Failed)
	assert.Equal(t, "boom", tally.LastFailure.Error())

	var total Tally
	total.Merge(tally)
	total.Merge(Tally{Fetched: 5, Skipped: 1})
	assert.Equal(t, 5, total.Fetched)
	assert.Equal(t, 2, total.Inserted)
	assert.Equal(t, 1, total.Skipped)
	assert.Equal(t, tally.LastFailure, total.LastFailure)
}
