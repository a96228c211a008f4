// printer.go: user-facing value rendering.
//
// FormatValue is what `print`, the `str` native and the REPL echo use;
// unlike Value.String it renders strings raw (no quotes). Numbers print in
// the shortest representation that round-trips ("1", not "1.000000").
package rlox

import (
	"fmt"
	"strconv"
)

// FormatValue renders v the way the language shows it to the user.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTString:
		return v.Data.(string)
	case VTFunction:
		return fmt.Sprintf("<fn %s>", v.Data.(*Function).Name.Name)
	case VTNative:
		return fmt.Sprintf("<native %s>", v.Data.(*Native).Name)
	default:
		return "<unknown>"
	}
}
