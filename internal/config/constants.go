package config

// ConfigFileNames are the extension config files searched for, in order.
var ConfigFileNames = []string{"mop.yaml", "mop.yml"}

// TraceEnvVar enables debug logging in the CLI when set to a non-empty value.
const TraceEnvVar = "MOP_TRACE"

// Method names with special meaning to the dispatcher.
const (
	ToStringMethodName  = "toString"
	EqualsMethodName    = "equals"
	CompareToMethodName = "compareTo"
	GetterPrefix        = "get"
	SetterPrefix        = "set"
)

// BinaryOperators maps an operator symbol to the method it dispatches to.
var BinaryOperators = map[string]string{
	"+":   "plus",
	"-":   "minus",
	"*":   "multiply",
	"/":   "div",
	"%":   "mod",
	"**":  "power",
	"<<":  "leftShift",
	">>":  "rightShift",
	"&":   "and",
	"|":   "or",
	"^":   "xor",
	"<=>": CompareToMethodName,
	"==":  EqualsMethodName,
}

// ComparisonOperators dispatch to compareTo and test its sign.
var ComparisonOperators = map[string]func(int) bool{
	"<":  func(c int) bool { return c < 0 },
	"<=": func(c int) bool { return c <= 0 },
	">":  func(c int) bool { return c > 0 },
	">=": func(c int) bool { return c >= 0 },
}

// UnaryOperators maps a prefix operator to its method.
var UnaryOperators = map[string]string{
	"-": "negative",
	"+": "positive",
	"~": "bitwiseNegate",
}
