package pricing

import (
	"sort"

	"github.com/aristath/bngoptimiser/internal/domain"
	"github.com/aristath/bngoptimiser/internal/rules"
)

// BuildInputs gathers everything the Option Builder needs. BankTier is
// precomputed once per bank by a geography.Resolver and passed in here
// rather than recomputed per option.
type BuildInputs struct {
	Demand       []domain.DemandRow
	Reference    *domain.ReferenceTables
	BankTier     map[string]domain.Tier
	ContractSize domain.ContractSize // already tier-up resolved
	Promoter     PromoterDiscount
}

// Build enumerates every legal, priced, stocked option for every demand row
// — normal options, plus paired options for adjacent/far tiers — and
// returns them sorted by (demand index, bank_id, supply habitat), a normal
// option ahead of a paired one on ties, with stock_id enumeration order
// kept otherwise, so repeated solves over unchanged inputs are reproducible.
func Build(in BuildInputs) []domain.Option {
	var options []domain.Option

	banks := make([]string, 0, len(in.BankTier))
	for b := range in.BankTier {
		banks = append(banks, b)
	}
	sort.Strings(banks)

	for demandIdx, d := range in.Demand {
		ctx := rules.Context{Catalog: in.Reference, TradingRules: in.Reference.TradingRules}

		for _, bankID := range banks {
			tier := in.BankTier[bankID]
			srmMult := in.Reference.SRM.Multiplier(tier)
			if srmMult == 0 {
				continue
			}

			stockRows := in.Reference.StockForBank(bankID)
			legalSupplies := legalSuppliesForDemand(ctx, d, stockRows, in.Reference)

			for _, supply := range legalSupplies {
				priceEntry, ok := in.Reference.Price(domain.PricingKey{
					BankID: bankID, HabitatName: supply.habitat, ContractSize: in.ContractSize, Tier: tier,
				})
				if !ok {
					continue
				}
				unitPrice := applyPromoter(priceEntry.Price, in.Promoter)
				options = append(options, domain.Option{
					DemandIdx:      demandIdx,
					BankID:         bankID,
					SupplyHabitat:  supply.habitat,
					Tier:           tier,
					UnitPrice:      unitPrice,
					StockUse:       map[string]float64{supply.stockID: 1.0 / srmMult},
					AllocationType: domain.AllocationNormal,
				})
			}

			if blend, ok := domain.PairedBlend[tier]; ok {
				options = append(options, pairedOptionsForDemand(demandIdx, bankID, tier, blend, legalSupplies, in)...)
			}
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].DemandIdx != options[j].DemandIdx {
			return options[i].DemandIdx < options[j].DemandIdx
		}
		if options[i].BankID != options[j].BankID {
			return options[i].BankID < options[j].BankID
		}
		if options[i].SupplyHabitat != options[j].SupplyHabitat {
			return options[i].SupplyHabitat < options[j].SupplyHabitat
		}
		return options[i].AllocationType < options[j].AllocationType
	})
	return options
}

type legalSupply struct {
	habitat string
	stockID string
}

// maxRejectedSamples bounds how many rejected candidates NoLegalOptionsError
// reports per demand — enough to diagnose, not a full dump of the catalogue.
const maxRejectedSamples = 5

// RejectedSamples scans every bank's stock for candidates that share the
// demand's umbrella and reports, for up to maxRejectedSamples of them, why
// each was rejected — the sample NoLegalOptionsError carries per spec §7.
// Checked in order: legality (distinctiveness/broad-group), stock, pricing.
func RejectedSamples(d domain.DemandRow, in BuildInputs) []domain.RejectedSupply {
	ctx := rules.Context{Catalog: in.Reference, TradingRules: in.Reference.TradingRules}

	banks := make([]string, 0, len(in.BankTier))
	for b := range in.BankTier {
		banks = append(banks, b)
	}
	sort.Strings(banks)

	var out []domain.RejectedSupply
	for _, bankID := range banks {
		tier := in.BankTier[bankID]
		for _, s := range in.Reference.StockForBank(bankID) {
			if len(out) >= maxRejectedSamples {
				return out
			}
			cat, ok := in.Reference.Habitat(s.HabitatName)
			if !ok || cat.UmbrellaType != d.UmbrellaType {
				continue // cross-umbrella candidates aren't informative rejections
			}
			reason := ""
			switch {
			case !rules.Legal(ctx, d.HabitatName, d.UmbrellaType, s.HabitatName):
				if cat.BroadGroup != "" {
					reason = "wrong distinctiveness or broad-group"
				} else {
					reason = "wrong distinctiveness"
				}
			case s.QuantityAvailable <= 0:
				reason = "no stock"
			default:
				if _, priced := in.Reference.Price(domain.PricingKey{BankID: bankID, HabitatName: s.HabitatName, ContractSize: in.ContractSize, Tier: tier}); !priced {
					reason = "no pricing"
				}
			}
			if reason != "" {
				out = append(out, domain.RejectedSupply{BankID: bankID, HabitatName: s.HabitatName, Reason: reason})
			}
		}
	}
	return out
}

// legalSuppliesForDemand returns, in deterministic (habitat_name, stock_id)
// order, every stock row at this bank whose habitat is legal for the demand
// and shares its umbrella.
func legalSuppliesForDemand(ctx rules.Context, d domain.DemandRow, stockRows []domain.StockEntry, ref *domain.ReferenceTables) []legalSupply {
	var out []legalSupply
	for _, s := range stockRows {
		cat, ok := ref.Habitat(s.HabitatName)
		if !ok || cat.UmbrellaType != d.UmbrellaType {
			continue
		}
		if s.QuantityAvailable <= 0 {
			continue
		}
		if !rules.Legal(ctx, d.HabitatName, d.UmbrellaType, s.HabitatName) {
			continue
		}
		out = append(out, legalSupply{habitat: s.HabitatName, stockID: s.StockID})
	}
	return out
}

// pairedOptionsForDemand builds one paired option per distinct (primary,
// companion) habitat pair available at this bank/tier. Primary and
// companion are both independently legal supplies for the demand; the pair
// is only built once per unordered habitat pair to avoid mirrored
// duplicates.
func pairedOptionsForDemand(demandIdx int, bankID string, tier domain.Tier, blend [2]float64, legal []legalSupply, in BuildInputs) []domain.Option {
	var out []domain.Option
	seen := make(map[[2]string]bool)

	for i := range legal {
		for j := range legal {
			if i == j || legal[i].habitat == legal[j].habitat {
				continue
			}
			pairKey := [2]string{legal[i].habitat, legal[j].habitat}
			revKey := [2]string{legal[j].habitat, legal[i].habitat}
			if seen[pairKey] || seen[revKey] {
				continue
			}

			primaryPrice, ok := in.Reference.Price(domain.PricingKey{BankID: bankID, HabitatName: legal[i].habitat, ContractSize: in.ContractSize, Tier: tier})
			if !ok {
				continue
			}
			companionPrice, ok := in.Reference.Price(domain.PricingKey{BankID: bankID, HabitatName: legal[j].habitat, ContractSize: in.ContractSize, Tier: tier})
			if !ok {
				continue
			}
			seen[pairKey] = true

			primaryUnit := applyPromoter(primaryPrice.Price, in.Promoter)
			companionUnit := applyPromoter(companionPrice.Price, in.Promoter)
			blended := blend[0]*primaryUnit + blend[1]*companionUnit

			out = append(out, domain.Option{
				DemandIdx:      demandIdx,
				BankID:         bankID,
				SupplyHabitat:  legal[i].habitat,
				Tier:           tier,
				UnitPrice:      blended,
				AllocationType: domain.AllocationPaired,
				StockUse: map[string]float64{
					legal[i].stockID: blend[0],
					legal[j].stockID: blend[1],
				},
				PairedParts: []domain.PairPart{
					{Habitat: legal[i].habitat, UnitPrice: primaryUnit, StockID: legal[i].stockID, StockUseRatio: blend[0]},
					{Habitat: legal[j].habitat, UnitPrice: companionUnit, StockID: legal[j].stockID, StockUseRatio: blend[1]},
				},
			})
		}
	}
	return out
}

func applyPromoter(price float64, p PromoterDiscount) float64 {
	if p.Kind == domain.PromoterPercentage && p.Value > 0 {
		return price * (1 - p.Value/100)
	}
	return price
}
