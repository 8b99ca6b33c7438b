package model

import "strings"

const (
	// MaxIdentifierLength is the longest identifier PostgreSQL keeps (NAMEDATALEN - 1).
	MaxIdentifierLength = 63

	// ColumnPrefix is prepended to column names that are empty or start with a digit.
	ColumnPrefix = "col"
	// TablePrefix is prepended to table names that are empty or start with a digit.
	TablePrefix = "table"
)

// turkishReplacer maps Turkish letters to their ASCII Latin equivalents.
// It runs before lower-casing: strings.ToLower("İ") is "i̇", not "i".
var turkishReplacer = strings.NewReplacer(
	"ı", "i", "İ", "I",
	"ğ", "g", "Ğ", "G",
	"ü", "u", "Ü", "U",
	"ş", "s", "Ş", "S",
	"ö", "o", "Ö", "O",
	"ç", "c", "Ç", "C",
)

// NormalizeColumnName normalizes a raw header into a column identifier.
func NormalizeColumnName(raw string) string {
	return NormalizeName(raw, ColumnPrefix)
}

// NormalizeTableName normalizes a dataset name into a table identifier.
func NormalizeTableName(raw string) string {
	return NormalizeName(raw, TablePrefix)
}

// NormalizeName turns any string into a lowercase identifier matching
// ^[a-z_][a-z0-9_]*$ of at most MaxIdentifierLength bytes.
//
//   - Turkish letters are transliterated ("Ürün Açıklaması" -> "urun_aciklamasi").
//   - Runs of whitespace, underscores and any other character outside
//     [a-z0-9] collapse into one underscore.
//   - Leading and trailing underscores are removed.
//   - An empty result becomes prefix, a result starting with a digit becomes
//     prefix + "_" + result.
//
// NormalizeName never fails and is idempotent.
func NormalizeName(raw, prefix string) string {
	if prefix == "" {
		prefix = ColumnPrefix
	}

	lowered := strings.ToLower(turkishReplacer.Replace(raw))

	var sb strings.Builder
	sb.Grow(len(lowered))
	pendingUnderscore := false
	for _, r := range lowered {
		if isLowerAlnum(r) {
			if pendingUnderscore && sb.Len() > 0 {
				sb.WriteByte(underscoreChar)
			}
			pendingUnderscore = false
			sb.WriteRune(r)
			continue
		}
		pendingUnderscore = true
	}

	result := sb.String()
	if result == "" {
		return prefix
	}
	if isDigit(result[0]) {
		result = prefix + "_" + result
	}
	return truncateIdentifier(result, MaxIdentifierLength)
}

// IsValidIdentifier reports whether name is already in normalized form.
func IsValidIdentifier(name string) bool {
	if name == "" || len(name) > MaxIdentifierLength {
		return false
	}
	if isDigit(name[0]) || name[0] == underscoreChar || name[len(name)-1] == underscoreChar {
		return false
	}
	prevUnderscore := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == underscoreChar {
			if prevUnderscore {
				return false
			}
			prevUnderscore = true
			continue
		}
		if !isLowerAlnum(rune(c)) {
			return false
		}
		prevUnderscore = false
	}
	return true
}

const underscoreChar = '_'

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// truncateIdentifier cuts name to limit bytes without leaving a trailing underscore.
// name must be ASCII.
func truncateIdentifier(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	return strings.TrimRight(name[:limit], "_")
}
