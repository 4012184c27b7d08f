package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/value"
)

type bigIntPolicyValue struct {
	policy coerce.BigIntPolicy
}

var _ pflag.Value = (*bigIntPolicyValue)(nil)

func (v *bigIntPolicyValue) String() string { return v.policy.String() }
func (v *bigIntPolicyValue) Type() string   { return "policy" }

func (v *bigIntPolicyValue) Set(s string) error {
	policy, err := coerce.ParseBigIntPolicy(s)
	if err != nil {
		return err
	}
	v.policy = policy
	return nil
}

type hintValue struct {
	hint value.Hint
}

var _ pflag.Value = (*hintValue)(nil)

func (v *hintValue) String() string { return v.hint.String() }
func (v *hintValue) Type() string   { return "hint" }

func (v *hintValue) Set(s string) error {
	hint, ok := value.ParseHint(s)
	if !ok {
		return fmt.Errorf("unknown hint %q (expected default, number or string)", s)
	}
	v.hint = hint
	return nil
}

type targetValue struct {
	target coerce.Target
}

var _ pflag.Value = (*targetValue)(nil)

func (v *targetValue) String() string { return v.target.String() }
func (v *targetValue) Type() string   { return strings.Join(coerce.TargetNames(), "|") }

func (v *targetValue) Set(s string) error {
	target, err := coerce.ParseTarget(s)
	if err != nil {
		return err
	}
	v.target = target
	return nil
}
