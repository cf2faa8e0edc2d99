package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFromPair(t *testing.T) {
	first := Candidate{Token: Token{Text: "Sarah", Offset: 10, Index: 1}, IsFirstName: true, FirstNameWeight: 0.4}
	last := Candidate{Token: Token{Text: "Williams", Offset: 0, Index: 0}, IsSurname: true, SurnameWeight: 0.9}

	m := MatchFromPair(Pair{First: first, Last: last, Distance: 1, Score: 0.7})
	assert.Equal(t, "Williams, Sarah", m.Name)
	assert.True(t, m.Reversed)
	assert.Equal(t, 0, m.Position)
	assert.Equal(t, 10, m.FirstOffset)
	assert.Equal(t, 0.4, m.FirstNameWeight)
	assert.Equal(t, 0.9, m.SurnameWeight)

	first.Index, last.Index = 3, 4
	m = MatchFromPair(Pair{First: first, Last: last, Distance: 1, Score: 0.7})
	assert.Equal(t, "Sarah Williams", m.Name)
	assert.False(t, m.Reversed)
	assert.Equal(t, 3, m.Position)
}

func TestPairKey(t *testing.T) {
	a := Candidate{Token: Token{Index: 5}}
	b := Candidate{Token: Token{Index: 2}}
	assert.Equal(t, Pair{First: a, Last: b}.Key(), Pair{First: b, Last: a}.Key())
}
