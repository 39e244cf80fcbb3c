package matching

import (
	"strings"

	"reelmatch/internal/titles"
	"reelmatch/internal/tmdb"
)

// Strategy names, in the order the engine tries them.
const (
	StrategyOriginalTitle    = "original_title"
	StrategyTitleYear        = "title_year"
	StrategyTitleWide        = "title_wide"
	StrategySplitTitle       = "split_title"
	StrategyNeighborYears    = "neighbor_years"
	StrategyCrossMediaTV     = "cross_media_tv"
	StrategySpellingVariants = "spelling_variants"
)

type searchPlan struct {
	query string
	opts  tmdb.SearchOptions
}

type strategy struct {
	name  string
	plans func(p PrimaryRecord, n titles.Normalizer) []searchPlan
}

// StrategyNames lists the strategies in priority order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.name)
	}
	return names
}

var strategies = []strategy{
	{name: StrategyOriginalTitle, plans: originalTitlePlans},
	{name: StrategyTitleYear, plans: titleYearPlans},
	{name: StrategyTitleWide, plans: titleWidePlans},
	{name: StrategySplitTitle, plans: splitTitlePlans},
	{name: StrategyNeighborYears, plans: neighborYearPlans},
	{name: StrategyCrossMediaTV, plans: crossMediaPlans},
	{name: StrategySpellingVariants, plans: spellingVariantPlans},
}

func originalTitlePlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	if strings.TrimSpace(p.OriginalTitle) == "" {
		return nil
	}
	return buildPlans(p.mediaType(), searchPlan{query: p.OriginalTitle})
}

func titleYearPlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	if p.Year <= 0 {
		return nil
	}
	return buildPlans(p.mediaType(), searchPlan{query: p.Title, opts: tmdb.SearchOptions{Year: p.Year}})
}

func titleWidePlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	if sameTitle(p.OriginalTitle, p.Title) {
		return nil
	}
	return buildPlans(p.mediaType(), searchPlan{query: p.Title})
}

func splitTitlePlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	var plans []searchPlan
	for _, source := range []string{p.Title, p.OriginalTitle} {
		if core, ok := titles.CoreTitle(source); ok {
			plans = append(plans, searchPlan{query: core, opts: tmdb.SearchOptions{Year: p.Year}})
		}
	}
	return buildPlans(p.mediaType(), plans...)
}

func neighborYearPlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	if p.Year <= 0 {
		return nil
	}
	query := p.OriginalTitle
	if strings.TrimSpace(query) == "" {
		query = p.Title
	}
	return buildPlans(p.mediaType(),
		searchPlan{query: query, opts: tmdb.SearchOptions{Year: p.Year + 1}},
		searchPlan{query: query, opts: tmdb.SearchOptions{Year: p.Year - 1}},
	)
}

func crossMediaPlans(p PrimaryRecord, _ titles.Normalizer) []searchPlan {
	if p.mediaType() != tmdb.MediaMovie {
		return nil
	}
	return buildPlans(tmdb.MediaTV, searchPlan{query: p.Title})
}

// spellingVariantPlans searches the cleaned, conjunction-free and regional
// spellings of the title that no earlier strategy has tried.
func spellingVariantPlans(p PrimaryRecord, n titles.Normalizer) []searchPlan {
	var plans []searchPlan
	for _, variant := range n.Variants(p.Title, p.OriginalTitle) {
		if sameTitle(variant, p.Title) || sameTitle(variant, p.OriginalTitle) {
			continue
		}
		plans = append(plans, searchPlan{query: variant, opts: tmdb.SearchOptions{Year: p.Year}})
	}
	return buildPlans(p.mediaType(), plans...)
}

// buildPlans sanitizes queries, stamps the media type, and drops empty or
// repeated searches.
func buildPlans(mediaType tmdb.MediaType, plans ...searchPlan) []searchPlan {
	out := make([]searchPlan, 0, len(plans))
	seen := make(map[searchPlan]struct{}, len(plans))
	for _, plan := range plans {
		plan.query = titles.SanitizeQuery(plan.query)
		if plan.query == "" {
			continue
		}
		if plan.opts.Year < 0 {
			plan.opts.Year = 0
		}
		plan.opts.MediaType = mediaType
		if _, ok := seen[plan]; ok {
			continue
		}
		seen[plan] = struct{}{}
		out = append(out, plan)
	}
	return out
}
