// Package textutil provides fuzzy string similarity and Unicode folding used by
// title and director matching.
//
// Scores are integers on a 0-100 scale. Ratio is the indel similarity built on
// go-edlib's longest common subsequence; TokenSetRatio, TokenSortRatio,
// PartialRatio and WRatio layer token and window heuristics on top of it.
// FoldDiacritics and NormalizeName produce comparison keys that ignore accents,
// case, hyphenation, and spacing.
package textutil
