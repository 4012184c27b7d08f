package history

// Source names the surface that produced an entry
type Source string

const (
	SourceCLI    Source = "cli"
	SourceREPL   Source = "repl"
	SourceServer Source = "server"
)

// Entry is one recorded evaluation. Result holds the inspected value and is
// empty when Error is set.
type Entry struct {
	ID        uint64 `json:"id" boltholdKey:"ID"`
	Source    Source `json:"source" boltholdIndex:"Source"`
	Expr      string `json:"expr"`
	Result    string `json:"result,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"createdAt" boltholdIndex:"CreatedAt"`
}
