package prize

import (
	"math"

	"github.com/rifanet/rifa-services/internal/rifasvc/models"
)

// tierRange is the span of card indices one tier occupies.
// Start > End means the tier received an empty range.
type tierRange struct {
	tier  *models.PrizeTier
	start int
	end   int
}

// Plan maps card indices to prize outcomes for one scratch game. It
// is a pure function of the ordered tier configuration and the total
// stock: the same inputs always produce the same mapping.
type Plan struct {
	ranges []tierRange
	total  int
}

// PlanPrizePool compiles ordered tiers over a stock of total cards.
// Each tier gets round(share*total) indices starting at a cursor that
// begins at 1 and advances in declared order. Rounding is independent
// per tier: the quantities may undershoot total (trailing indices get
// no prize) or overshoot it (later tiers get a truncated or empty
// range). Both cases are kept as-is, never corrected.
func PlanPrizePool(tiers []*models.PrizeTier, total int) *Plan {
	p := &Plan{total: total}
	cursor := 1
	for _, t := range tiers {
		qty := int(math.Round(t.Share * float64(total)))
		if qty <= 0 {
			continue
		}
		p.ranges = append(p.ranges, tierRange{tier: t, start: cursor, end: cursor + qty - 1})
		cursor += qty
	}
	return p
}

// OutcomeAt returns the tier assigned to a card index, or nil for no
// prize. Indices outside [1, total] always map to nil.
func (p *Plan) OutcomeAt(index int) *models.PrizeTier {
	if index < 1 || index > p.total {
		return nil
	}
	for _, r := range p.ranges {
		if index >= r.start && index <= r.end {
			return r.tier
		}
	}
	return nil
}

// PrizedIndices is the count of indices that map to some tier,
// clamped to the stock size.
func (p *Plan) PrizedIndices() int {
	n := 0
	for _, r := range p.ranges {
		end := r.end
		if end > p.total {
			end = p.total
		}
		if r.start > end {
			continue
		}
		n += end - r.start + 1
	}
	return n
}
