package rules

import "github.com/aristath/bngoptimiser/internal/domain"

// Context carries everything a legality check needs about the reference
// catalogue — threaded through rather than closed over, so a Checker stays
// a pure function of its arguments.
type Context struct {
	Catalog      *domain.ReferenceTables
	TradingRules map[string]domain.TradingRuleOverride
}

// Checker decides whether supply may legally offset demand. Each umbrella
// type gets its own implementation behind this one signature.
type Checker func(ctx Context, demand domain.HabitatCatalogEntry, supply domain.HabitatCatalogEntry) bool

// dispatch is the umbrella -> default-rule lookup table. Built once; never
// mutated, so it's safe to share across concurrent solves.
var dispatch = map[domain.UmbrellaType]Checker{
	domain.UmbrellaArea:        areaLegal,
	domain.UmbrellaHedgerow:    hedgerowLegal,
	domain.UmbrellaWatercourse: watercourseLegal,
}

// Legal decides whether supplyHabitat may offset demandHabitat, applying
// the explicit TradingRules override first and falling back to the
// umbrella-specific defaults. Cross-umbrella trading is never legal,
// checked before any override or default rule runs. demandUmbrella is
// required rather than derived from the catalogue because a synthetic
// "Net Gain (X%)" demand has no catalogue entry of its own.
func Legal(ctx Context, demandHabitat string, demandUmbrella domain.UmbrellaType, supplyHabitat string) bool {
	supply, ok := ctx.Catalog.Habitat(supplyHabitat)
	if !ok {
		return false
	}
	if demandUmbrella != supply.UmbrellaType {
		return false
	}

	if override, ok := ctx.TradingRules[demandHabitat]; ok {
		return override.AllowedSupplies[supplyHabitat]
	}

	if isNetGainPseudo(demandHabitat) {
		return netGainLegal(demandUmbrella, ctx, supply)
	}

	demand, ok := ctx.Catalog.Habitat(demandHabitat)
	if !ok {
		return false
	}
	checker, ok := dispatch[demand.UmbrellaType]
	if !ok {
		return false
	}
	return checker(ctx, demand, supply)
}

// NetGainLegal exposes the Net-Gain-specific minimum for callers (such as
// the metric parser) that need to test a headline demand against a
// candidate surplus without going through a synthetic DemandRow.
func NetGainLegal(ctx Context, umbrella domain.UmbrellaType, supplyHabitat string) bool {
	supply, ok := ctx.Catalog.Habitat(supplyHabitat)
	if !ok || supply.UmbrellaType != umbrella {
		return false
	}
	return netGainLegal(umbrella, ctx, supply)
}

func isNetGainPseudo(name string) bool {
	return len(name) >= 8 && name[:8] == "Net Gain"
}

// netGainLegal implements each umbrella's Net-Gain-specific minimum:
// area headline demand accepts any same-umbrella supply at or above Low
// distinctiveness; hedgerow and watercourse headline demand accept any
// supply of their umbrella.
func netGainLegal(umbrella domain.UmbrellaType, ctx Context, supply domain.HabitatCatalogEntry) bool {
	if umbrella == domain.UmbrellaHedgerow {
		return true // any hedgerow supply
	}
	if umbrella == domain.UmbrellaWatercourse {
		return true // any watercourse supply
	}
	return ctx.Catalog.AtLeast(supply.DistinctivenessName, domain.DistinctivenessLow)
}

// areaLegal implements the area-habitat default rules.
func areaLegal(ctx Context, demand, supply domain.HabitatCatalogEntry) bool {
	switch demand.DistinctivenessName {
	case domain.DistinctivenessVeryHigh, domain.DistinctivenessHigh:
		return SameHabitat(demand.HabitatName, supply.HabitatName)
	case domain.DistinctivenessMedium:
		if ctx.Catalog.AtLeast(supply.DistinctivenessName, domain.DistinctivenessHigh) {
			return true
		}
		return supply.DistinctivenessName == domain.DistinctivenessMedium && supply.BroadGroup == demand.BroadGroup
	case domain.DistinctivenessLow:
		return ctx.Catalog.AtLeast(supply.DistinctivenessName, domain.DistinctivenessLow)
	default: // Very Low demand: no default rule specified, require like-for-like
		return SameHabitat(demand.HabitatName, supply.HabitatName)
	}
}

// hedgerowLegal implements the hedgerow default rules: VH/H/M demand
// requires like-for-like; L/VL demand requires the same habitat traded up
// to a strictly higher distinctiveness.
func hedgerowLegal(ctx Context, demand, supply domain.HabitatCatalogEntry) bool {
	switch demand.DistinctivenessName {
	case domain.DistinctivenessVeryHigh, domain.DistinctivenessHigh, domain.DistinctivenessMedium:
		return SameHabitat(demand.HabitatName, supply.HabitatName)
	default: // Low, Very Low
		if !SameHabitat(demand.HabitatName, supply.HabitatName) {
			return false
		}
		dl, _ := ctx.Catalog.DistinctivenessLevel(demand.DistinctivenessName)
		sl, _ := ctx.Catalog.DistinctivenessLevel(supply.DistinctivenessName)
		return sl > dl
	}
}

// watercourseLegal implements the watercourse default rules. Very High
// demand is never legally offset by any supply — the engine returns false
// here and the caller surfaces it as requiring bespoke compensation.
func watercourseLegal(ctx Context, demand, supply domain.HabitatCatalogEntry) bool {
	switch demand.DistinctivenessName {
	case domain.DistinctivenessVeryHigh:
		return false
	case domain.DistinctivenessHigh, domain.DistinctivenessMedium:
		return SameHabitat(demand.HabitatName, supply.HabitatName)
	case domain.DistinctivenessLow:
		if !SameHabitat(demand.HabitatName, supply.HabitatName) {
			return false
		}
		dl, _ := ctx.Catalog.DistinctivenessLevel(demand.DistinctivenessName)
		sl, _ := ctx.Catalog.DistinctivenessLevel(supply.DistinctivenessName)
		return sl > dl
	default:
		return SameHabitat(demand.HabitatName, supply.HabitatName)
	}
}
