package fate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// DefaultFormula is the standard Fate dice formula.
const DefaultFormula = "4dF"

// ErrFormula is returned for a formula other than NdF.
var ErrFormula = errors.New("fate: formula must look like NdF")

// RollRequest describes an ad-hoc roll. Blank fields get the table defaults.
type RollRequest struct {
	Formula     string
	Actor       string
	Skill       string
	Modifier    int
	Description string
}

// RollResult is a resolved roll.
type RollResult struct {
	RollRequest
	Dice  []int
	Total int
}

// Ladder returns the adjective of the total on the Fate ladder.
func (r RollResult) Ladder() string {
	return LadderName(r.Total)
}

// String renders the result as a single chat line.
func (r RollResult) String() string {
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		switch {
		case d > 0:
			faces[i] = "+"
		case d < 0:
			faces[i] = "-"
		default:
			faces[i] = "0"
		}
	}
	return fmt.Sprintf("%s rolls %s (%s %s%+d): %+d %s. %s",
		r.Actor, r.Skill, r.Formula, strings.Join(faces, ""), r.Modifier, r.Total, r.Ladder(), r.Description)
}

var ladder = map[int]string{
	8:  "Legendary",
	7:  "Epic",
	6:  "Fantastic",
	5:  "Superb",
	4:  "Great",
	3:  "Good",
	2:  "Fair",
	1:  "Average",
	0:  "Mediocre",
	-1: "Poor",
	-2: "Terrible",
}

// LadderName names a result on the Fate ladder.
func LadderName(n int) string {
	switch {
	case n > 8:
		return "Beyond Legendary"
	case n < -2:
		return "Abysmal"
	}
	return ladder[n]
}

// Roller rolls Fate dice from a seeded source.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller seeded with seed. Equal seeds give equal rolls.
func NewRoller(seed uint64) *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll resolves req.
func (r *Roller) Roll(req RollRequest) (RollResult, error) {
	if strings.TrimSpace(req.Formula) == "" {
		req.Formula = DefaultFormula
	}
	n, err := parseFormula(req.Formula)
	if err != nil {
		return RollResult{}, err
	}
	if strings.TrimSpace(req.Actor) == "" {
		req.Actor = "Mysterious Entity"
	}
	if strings.TrimSpace(req.Skill) == "" {
		req.Skill = "Mysterious Skill"
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = "Mysterious Reason"
	}

	res := RollResult{RollRequest: req, Dice: make([]int, n), Total: req.Modifier}
	for i := range res.Dice {
		res.Dice[i] = r.rng.IntN(3) - 1
		res.Total += res.Dice[i]
	}
	return res, nil
}

func parseFormula(formula string) (int, error) {
	f := strings.ToLower(strings.TrimSpace(formula))
	count, ok := strings.CutSuffix(f, "df")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFormula, formula)
	}
	if count == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 || n > 100 {
		return 0, fmt.Errorf("%w: %q", ErrFormula, formula)
	}
	return n, nil
}
