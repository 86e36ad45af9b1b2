package domain

import "fmt"

// Mode is the transport mode of a leg. It decides the resolution path for
// the leg's endpoints: flights go through the airport directory, every other
// mode through the geocoder.
type Mode string

const (
	ModeFlight Mode = "flight"
	ModeTrain  Mode = "train"
	ModeCar    Mode = "car"
	ModeFerry  Mode = "ferry"
)

// ParseMode validates a wire-format mode string. The empty string defaults
// to ModeFlight; any other unrecognized value is rejected.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFlight, nil
	case ModeFlight, ModeTrain, ModeCar, ModeFerry:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
	}
}

// IsFlight reports whether endpoints of this mode are airport codes.
func (m Mode) IsFlight() bool { return m == ModeFlight }

func (m Mode) String() string { return string(m) }
