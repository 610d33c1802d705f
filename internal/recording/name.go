package recording

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"tourneyreel/internal/services"
)

// ErrUnrecognizedName marks a file name that does not follow the camera
// naming convention.
var ErrUnrecognizedName = errors.New("unrecognized recording name")

var namePattern = regexp.MustCompile(`^([A-Za-z]{2})(\d{2})(\d{4})$`)

// Name is the parsed form of a camera file name such as GX010343.MP4:
// prefix GX, sub-index 01, rolling counter 0343. Files sharing a counter are
// chapters of one continuous recording.
type Name struct {
	Prefix   string
	SubIndex string
	Counter  string
}

// ParseName parses a bare file name or path.
func ParseName(filename string) (Name, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	match := namePattern.FindStringSubmatch(stem)
	if match == nil {
		return Name{}, services.Wrap(services.ErrValidation, "recording", "parse name",
			fmt.Sprintf("%q", base), ErrUnrecognizedName)
	}
	return Name{
		Prefix:   strings.ToUpper(match[1]),
		SubIndex: match[2],
		Counter:  match[3],
	}, nil
}

func (n Name) String() string {
	return n.Prefix + n.SubIndex + n.Counter
}
