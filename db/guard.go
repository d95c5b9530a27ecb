// guard.go is the zero-trust safeguard between the LLM and the warehouse.
//
// Generated SQL is never assumed to be read-only: before any statement
// reaches the pool it is stripped of comments and string literals and
// scanned for write/DDL keywords. The warehouse credential being
// read-only is a second line of defense, not the first.
package db

import (
	"strings"
)

// forbiddenKeywords are statement-leading or embedded words that mark a
// statement as mutating. Matched on word boundaries after comment and
// string-literal stripping, so a filter like name = 'update' passes.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "MERGE", "UPSERT",
	"DROP", "CREATE", "ALTER", "TRUNCATE", "RENAME",
	"GRANT", "REVOKE", "COPY", "VACUUM", "ANALYZE", "REINDEX", "CLUSTER",
	"LOCK", "LISTEN", "NOTIFY", "PREPARE", "EXECUTE", "DEALLOCATE",
	"CALL", "DO", "SET", "RESET", "DISCARD", "COMMENT", "SECURITY",
}

// CheckReadOnly rejects any statement that is not a plain read.
// Returns a *QueryError with ErrKindForbidden on rejection.
func CheckReadOnly(sql string) error {
	cleaned := stripLiteralsAndComments(sql)
	trimmed := strings.TrimSpace(cleaned)
	if trimmed == "" {
		return &QueryError{Kind: ErrKindOther, Message: "empty query"}
	}

	// One statement per turn. A trailing semicolon is tolerated, anything
	// after it is not.
	if idx := strings.Index(trimmed, ";"); idx >= 0 && strings.TrimSpace(trimmed[idx+1:]) != "" {
		return &QueryError{Kind: ErrKindForbidden, Message: "multiple statements are not allowed"}
	}

	upper := strings.ToUpper(trimmed)

	// Must start with a read verb.
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") &&
		!strings.HasPrefix(upper, "TABLE") && !strings.HasPrefix(upper, "VALUES") &&
		!strings.HasPrefix(upper, "SHOW") && !strings.HasPrefix(upper, "EXPLAIN") {
		return &QueryError{Kind: ErrKindForbidden, Message: "only read queries are allowed"}
	}

	// No mutating keyword anywhere (covers data-modifying CTEs like
	// WITH x AS (DELETE ...)).
	for _, word := range splitWords(upper) {
		for _, kw := range forbiddenKeywords {
			if word == kw {
				return &QueryError{
					Kind:    ErrKindForbidden,
					Message: "statement contains forbidden keyword " + kw,
				}
			}
		}
	}

	return nil
}

// stripLiteralsAndComments blanks out single-quoted strings, quoted
// identifiers, line comments and block comments so keyword matching only
// sees real SQL tokens.
func stripLiteralsAndComments(sql string) string {
	var sb strings.Builder
	sb.Grow(len(sql))

	i := 0
	for i < len(sql) {
		switch {
		case sql[i] == '\'': // string literal, '' escapes a quote
			sb.WriteByte(' ')
			i++
			for i < len(sql) {
				if sql[i] == '\'' {
					if i+1 < len(sql) && sql[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
		case sql[i] == '"': // quoted identifier
			sb.WriteByte(' ')
			i++
			for i < len(sql) && sql[i] != '"' {
				i++
			}
			if i < len(sql) {
				i++
			}
		case strings.HasPrefix(sql[i:], "--"):
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case strings.HasPrefix(sql[i:], "/*"):
			i += 2
			for i < len(sql) && !strings.HasPrefix(sql[i:], "*/") {
				i++
			}
			if i < len(sql) {
				i += 2
			}
			sb.WriteByte(' ')
		default:
			sb.WriteByte(sql[i])
			i++
		}
	}
	return sb.String()
}

// splitWords splits on anything that isn't part of an identifier.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '_'
	})
}
