package screening

import (
	"github.com/akshaybhat/equiscan/internal/domain"
)

// Per-stock allocation caps: at most 25% of the remaining budget and 15% of
// the total budget can go to a single candidate.
const (
	maxRemainingFraction = 0.25
	maxTotalFraction     = 0.15
)

// BuildAllocationPlan greedily allocates budget across ranked buy
// candidates and attaches informational sell recommendations. Candidates
// with no usable price or a zero integer share count are skipped, not
// aborted on; allocation stops when the budget is exhausted.
func BuildAllocationPlan(buys, sells []domain.StockAnalysis, budget float64) AllocationPlan {
	if len(buys) > maxBuyAllocations {
		buys = buys[:maxBuyAllocations]
	}
	if len(sells) > maxSellRecommendations {
		sells = sells[:maxSellRecommendations]
	}

	plan := AllocationPlan{RemainingBudget: budget}

	for _, stock := range buys {
		if plan.RemainingBudget <= 0 {
			break
		}
		if stock.CurrentPrice <= 0 {
			continue
		}

		maxInvestment := plan.RemainingBudget * maxRemainingFraction
		if totalCap := budget * maxTotalFraction; totalCap < maxInvestment {
			maxInvestment = totalCap
		}

		shares := int(maxInvestment / stock.CurrentPrice)
		if shares == 0 {
			continue
		}

		investment := float64(shares) * stock.CurrentPrice
		plan.Allocations = append(plan.Allocations, Allocation{
			Symbol:           stock.Symbol,
			Shares:           shares,
			InvestmentAmount: investment,
			ExpectedReturn:   stock.PredictedReturn,
			OverallScore:     stock.OverallScore,
			Reasoning:        stock.Reasoning,
		})
		plan.RemainingBudget -= investment
	}

	for _, stock := range sells {
		plan.RecommendedSells = append(plan.RecommendedSells, SellRecommendation{
			Symbol:          stock.Symbol,
			PredictedReturn: stock.PredictedReturn,
			Reasoning:       stock.Reasoning,
		})
	}

	plan.TotalInvested = budget - plan.RemainingBudget
	plan.Diversification = len(plan.Allocations)
	return plan
}
