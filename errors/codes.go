package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Structural errors, detected while a graph is described.
const (
	// ErrCodeIllegalShape indicates a stage was appended where the graph shape forbids it.
	ErrCodeIllegalShape ErrorCode = "ILLEGAL_SHAPE"
	// ErrCodeUnsupportedStage indicates an engine does not know how to run a stage.
	ErrCodeUnsupportedStage ErrorCode = "UNSUPPORTED_STAGE"
	// ErrCodeInvalidArgument indicates an operator was given an unusable argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Runtime errors, delivered through the protocol or an eventual result.
const (
	// ErrCodeStreamFailure indicates operator logic panicked or failed.
	ErrCodeStreamFailure ErrorCode = "STREAM_FAILURE"
	// ErrCodeContractViolation indicates a participant broke the signal ordering rules.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
	// ErrCodeNullValue indicates a nil element where a value is required.
	ErrCodeNullValue ErrorCode = "NULL_VALUE"
	// ErrCodeCancelled indicates the stream was cancelled before it produced a result.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Configuration errors
const (
	// ErrCodeEngineResolution indicates no engine could be resolved for execution.
	ErrCodeEngineResolution ErrorCode = "ENGINE_RESOLUTION"
	// ErrCodeInvalidConfig indicates a configuration value failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var programmerCodes = map[ErrorCode]bool{
	ErrCodeIllegalShape:      true,
	ErrCodeUnsupportedStage:  true,
	ErrCodeInvalidArgument:   true,
	ErrCodeContractViolation: true,
	ErrCodeInvalidConfig:     true,
}

// IsProgrammerCode reports whether the code denotes a defect in calling code
// rather than a failure of the data flowing through a stream.
func IsProgrammerCode(code ErrorCode) bool {
	return programmerCodes[code]
}
