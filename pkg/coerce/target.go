package coerce

import (
	"fmt"
	"strings"

	"github.com/nektos/coerce/pkg/value"
)

// Target is an abstract conversion that can be requested by name.
type Target int

const (
	TargetBoolean Target = iota
	TargetNumber
	TargetNumeric
	TargetString
	TargetPrimitive
)

var targetNames = []string{"boolean", "number", "numeric", "string", "primitive"}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// TargetNames lists the accepted names in declaration order.
func TargetNames() []string {
	return append([]string(nil), targetNames...)
}

// ParseTarget maps a name such as "number" to its Target.
func ParseTarget(s string) (Target, error) {
	for i, name := range targetNames {
		if strings.EqualFold(s, name) {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown conversion %q (expected one of %s)", s, strings.Join(targetNames, ", "))
}

// Convert applies the implicit conversion t to v. The hint is only
// consulted by TargetPrimitive.
func Convert(v value.Value, t Target, hint value.Hint) (value.Value, error) {
	switch t {
	case TargetBoolean:
		return value.Bool(ToBoolean(v)), nil
	case TargetNumber:
		f, err := ToNumber(v)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Number(f), nil
	case TargetNumeric:
		return ToNumeric(v)
	case TargetString:
		return ToString(v)
	case TargetPrimitive:
		return ToPrimitive(v, hint)
	}
	return value.Undefined(), fmt.Errorf("unknown conversion %v", t)
}
