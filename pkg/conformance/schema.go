package conformance

// TestSuite is one YAML file of conformance cases
type TestSuite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Policy is the bigint policy for every case in the suite: strict or lossy
	Policy string            `yaml:"policy,omitempty"`
	Vars   map[string]string `yaml:"vars,omitempty"`
	Tests  []TestCase        `yaml:"tests"`
}

// TestCase is a single expression and what it should produce
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"` // bool or string
	Code        string      `yaml:"code"`
	Policy      string      `yaml:"policy,omitempty"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation lists the checks applied to a result. Every field that is set
// must hold.
type Expectation struct {
	Value   interface{} `yaml:"value,omitempty"`   // compared with SameValue
	Repr    string      `yaml:"repr,omitempty"`    // debug representation
	Type    string      `yaml:"type,omitempty"`    // typeof name
	Error   string      `yaml:"error,omitempty"`   // NotConvertible, TypeError, ...
	NaN     bool        `yaml:"nan,omitempty"`     // result is NaN
	NegZero bool        `yaml:"negzero,omitempty"` // result is -0
}

func (e Expectation) empty() bool {
	return e.Value == nil && e.Repr == "" && e.Type == "" && e.Error == "" && !e.NaN && !e.NegZero
}

// IsSkipped reports whether the case is disabled and why
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
	case string:
		if v != "" {
			return true, v
		}
	}
	return false, ""
}
