package compiler

// Program size limits.
const (
	// MaxProgramWords bounds the size of a compiled program. Patterns whose
	// lowering exceeds it fail to compile.
	MaxProgramWords = 1 << 16
)
