package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/internal/command"
)

// Device selects where inference runs.
type Device struct {
	// GPU is false for CPU inference.
	GPU bool
	// Index is the accelerator index when GPU is true.
	Index int
}

// CPU is the always-available device.
var CPU = Device{}

// CUDA returns the device for accelerator index i.
func CUDA(i int) Device {
	return Device{GPU: true, Index: i}
}

// String renders the device the way whisper's --device flag expects.
func (d Device) String() string {
	if !d.GPU {
		return "cpu"
	}
	return "cuda:" + strconv.Itoa(d.Index)
}

// Accelerator is one GPU reported by a DeviceProbe.
type Accelerator struct {
	Index int
	Name  string
}

// DeviceProbe lists the accelerators available on this host.
type DeviceProbe interface {
	Accelerators(ctx context.Context) ([]Accelerator, error)
}

// ResolveDevice returns want when it is available and CPU otherwise.
func ResolveDevice(want Device, available []Accelerator) Device {
	if !want.GPU {
		return CPU
	}
	for _, a := range available {
		if a.Index == want.Index {
			return want
		}
	}
	return CPU
}

// NvidiaSMIProbe lists NVIDIA GPUs with nvidia-smi.
type NvidiaSMIProbe struct {
	// Path is the nvidia-smi executable. Defaults to "nvidia-smi".
	Path string

	runner command.Runner
}

// NewNvidiaSMIProbe returns a probe that runs nvidia-smi from PATH.
func NewNvidiaSMIProbe() *NvidiaSMIProbe {
	return &NvidiaSMIProbe{Path: "nvidia-smi", runner: command.ExecRunner{}}
}

// Accelerators returns the GPUs nvidia-smi reports. A missing nvidia-smi
// means no accelerators, not an error.
func (p *NvidiaSMIProbe) Accelerators(ctx context.Context) ([]Accelerator, error) {
	path := p.Path
	if path == "" {
		path = "nvidia-smi"
	}
	runner := p.runner
	if runner == nil {
		runner = command.ExecRunner{}
	}

	args := []string{"--query-gpu=index,name", "--format=csv,noheader"}
	res, err := runner.Run(ctx, path, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil
		}
		return nil, command.Wrap(path, args, res, err)
	}
	return parseNvidiaSMI(res.Stdout)
}

// parseNvidiaSMI parses "index, name" CSV rows.
func parseNvidiaSMI(out string) ([]Accelerator, error) {
	var accels []Accelerator
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, name, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("nvidia-smi: unexpected row %q", line)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, fmt.Errorf("nvidia-smi: bad index in %q: %w", line, err)
		}
		accels = append(accels, Accelerator{Index: i, Name: strings.TrimSpace(name)})
	}
	return accels, nil
}
