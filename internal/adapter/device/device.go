package device

import (
	"fmt"
	"os"
	"strings"

	"jokegen/internal/domain"
)

const (
	NameAccelerator = "cuda"
	NameDefault     = "cpu"
)

// Probe reports whether an accelerator is visible to this process.
type Probe func() bool

// Resolve turns a configured accelerator mode into a placement, using the
// default probe for "auto".
func Resolve(mode string) (domain.Placement, error) {
	return ResolveWith(mode, DetectAccelerator)
}

func ResolveWith(mode string, probe Probe) (domain.Placement, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto", "automatic":
		return placement(probe()), nil
	case "true", "gpu", "cuda", "accelerator":
		return placement(true), nil
	case "false", "cpu", "none":
		return placement(false), nil
	default:
		return domain.Placement{}, fmt.Errorf("unknown accelerator mode: %q", mode)
	}
}

func placement(accelerator bool) domain.Placement {
	if accelerator {
		return domain.Placement{Accelerator: true, Name: NameAccelerator}
	}
	return domain.Placement{Accelerator: false, Name: NameDefault}
}

// DetectAccelerator checks CUDA_VISIBLE_DEVICES first and falls back to
// looking for an NVIDIA device node.
func DetectAccelerator() bool {
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		return visibleDevices(v)
	}
	_, err := os.Stat("/dev/nvidia0")
	return err == nil
}

func visibleDevices(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v != "" && v != "-1" && v != "none" && v != "nodevfiles"
}
