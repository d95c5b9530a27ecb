package workflow

import (
	"strings"
)

// extractSQL pulls a SQL statement out of a model response, tolerating
// markdown code fences and surrounding narrative. Returns "" when no
// SQL can be found.
func extractSQL(response string) string {
	response = strings.TrimSpace(response)

	// ```sql fenced block
	if start := strings.Index(response, "```sql"); start != -1 {
		start += len("```sql")
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if looksLikeSQL(content) {
				return cleanSQL(content)
			}
			return ""
		}
	}

	// Generic fenced block
	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if looksLikeSQL(content) {
				return cleanSQL(content)
			}
		}
	}

	// Bare response
	if looksLikeSQL(response) {
		return cleanSQL(response)
	}

	return ""
}

// looksLikeSQL checks whether text starts with a SQL verb. Mutating
// verbs are included on purpose: the guard rejects them later with a
// precise message, which beats misreporting them as "not SQL".
func looksLikeSQL(text string) bool {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for _, kw := range []string{"SELECT", "WITH", "TABLE", "VALUES", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP"} {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// cleanSQL normalizes SQL by trimming whitespace and a trailing semicolon.
func cleanSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(sql, ";")
	return strings.TrimSpace(sql)
}

// isOutOfScope checks for the sentinel, alone or fenced. Models that
// were told to answer in SQL sometimes fence the sentinel too, with or
// without a language tag.
func isOutOfScope(response string) bool {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```sql")
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)
	return strings.EqualFold(cleaned, outOfScopeSentinel)
}
