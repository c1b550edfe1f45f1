package enums

// declaration of the string enums accepted in the
// config file, for user data validation purposes

import (
	"github.com/orsinium-labs/enum"
)

type Solver enum.Member[string]

var (
	sv = enum.NewBuilder[string, Solver]()

	SolverJV        = sv.Add(Solver{"jv"})
	SolverMunkres   = sv.Add(Solver{"munkres"})
	SolverHungarian = sv.Add(Solver{"hungarian"})

	Solvers = sv.Enum()
)

type LoggingLevel enum.Member[string]

var (
	ll = enum.NewBuilder[string, LoggingLevel]()

	LoggingLevelDebug = ll.Add(LoggingLevel{"debug"})
	LoggingLevelInfo  = ll.Add(LoggingLevel{"info"})
	LoggingLevelWarn  = ll.Add(LoggingLevel{"warn"})
	LoggingLevelError = ll.Add(LoggingLevel{"error"})

	LoggingLevels = ll.Enum()
)
