package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary the pipeline executes.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports whether a requirement resolved on this machine. Path is the
// resolved executable when Available.
type Status struct {
	Name        string
	Command     string
	Description string
	Path        string
	Available   bool
	Detail      string
}

// CheckBinaries resolves every requirement through PATH (or as given, when
// the command is already a path).
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
		}
		switch path, err := exec.LookPath(status.Command); {
		case status.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		default:
			status.Path = path
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}
