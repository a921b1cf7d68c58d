package fate

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func TestRollDefaults(t *testing.T) {
	res, err := NewRoller(7).Roll(RollRequest{Modifier: 2})
	assert.NilError(t, err)
	assert.Equal(t, res.Formula, DefaultFormula)
	assert.Equal(t, res.Actor, "Mysterious Entity")
	assert.Equal(t, res.Skill, "Mysterious Skill")
	assert.Equal(t, res.Description, "Mysterious Reason")
	assert.Equal(t, len(res.Dice), 4)

	sum := 2
	for _, d := range res.Dice {
		assert.Assert(t, d >= -1 && d <= 1)
		sum += d
	}
	assert.Equal(t, res.Total, sum)
}

func TestRollIsDeterministicBySeed(t *testing.T) {
	a, err := NewRoller(99).Roll(RollRequest{Formula: "2dF"})
	assert.NilError(t, err)
	b, err := NewRoller(99).Roll(RollRequest{Formula: "2df"})
	assert.NilError(t, err)
	assert.DeepEqual(t, a.Dice, b.Dice)
	assert.Equal(t, len(a.Dice), 2)
}

func TestRollRejectsOtherDice(t *testing.T) {
	for _, formula := range []string{"3d6", "0dF", "xdF"} {
		_, err := NewRoller(1).Roll(RollRequest{Formula: formula})
		assert.Assert(t, errors.Is(err, ErrFormula), formula)
	}
}

func TestLadderName(t *testing.T) {
	assert.Equal(t, LadderName(2), "Fair")
	assert.Equal(t, LadderName(0), "Mediocre")
	assert.Equal(t, LadderName(9), "Beyond Legendary")
	assert.Equal(t, LadderName(-4), "Abysmal")
}
