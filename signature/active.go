// Copyright © 2024 The ELPS authors

package signature

// ActiveParameter returns the parameter to highlight after argCount
// arguments.  It never passes the last parameter, so a variadic tail stays
// highlighted once the arguments outnumber the declared parameters.
func ActiveParameter(argCount int, paramCount int) int {
	return min(argCount, max(paramCount-1, 0))
}
