package sensor

import (
	"fmt"
	"strings"
)

// Kind identifies a monitored metric whose sysfs node is discovered at
// runtime.
type Kind int

const (
	KindBatteryTemp Kind = iota
	KindCPUTemp
	KindFPS
)

// Kinds lists every kind in detection order.
var Kinds = []Kind{KindBatteryTemp, KindCPUTemp, KindFPS}

func (k Kind) String() string {
	switch k {
	case KindBatteryTemp:
		return "battery_temp"
	case KindCPUTemp:
		return "cpu_temp"
	case KindFPS:
		return "fps"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown sensor kind %q", name)
}

// ResolvedSensor is the outcome of detection for one kind. An empty Path
// means the device does not expose the metric; Divider is then the default
// and carries no meaning.
type ResolvedSensor struct {
	Kind    Kind
	Path    string
	Divider int
}

// Supported reports whether a node was found.
func (s ResolvedSensor) Supported() bool {
	return s.Path != ""
}
