// Package codegen exports compiled programs as Go source.
package codegen

// Import path and identifiers used in generated code.
const (
	RegvmPath     = "github.com/KromDaniel/regvm/pkg/regvm"
	PatternSuffix = "Pattern"
	MatchSuffix   = "Match"
	SubjectName   = "subject"
	AllocatorName = "a"
)

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
