// Package similarity provides pure string and content similarity scoring.
//
// StringSimilarity is normalized Levenshtein distance over runes.
// ContentSimilarity reduces both bodies to a normalized prefix window before
// scoring so large documents compare in bounded time. Both functions always
// return values in [0, 1] and have no side effects.
package similarity
