// Package device decides whether inference runs on a CUDA GPU or the CPU.
//
// The check mirrors what a CUDA runtime would see: CUDA_VISIBLE_DEVICES must
// not hide every device and nvidia-smi must list at least one GPU.
package device

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"sdgen/sdruntime"

	"github.com/dustin/go-humanize"
)

// Kind is the compute target.
type Kind int

const (
	CPU Kind = iota
	CUDA
)

func (k Kind) String() string {
	if k == CUDA {
		return "cuda"
	}
	return "cpu"
}

// Runtime maps the kind to the pipeline placement.
func (k Kind) Runtime() sdruntime.Device {
	if k == CUDA {
		return sdruntime.DeviceCUDA
	}
	return sdruntime.DeviceCPU
}

// GPU is one row of nvidia-smi output.
type GPU struct {
	Name        string
	MemoryTotal int64 // bytes
}

// Info is the result of Detect.
type Info struct {
	Kind Kind
	GPUs []GPU

	// Reason explains a CPU decision, empty for CUDA.
	Reason string
}

// Accelerated reports whether a GPU was found.
func (i Info) Accelerated() bool {
	return i.Kind == CUDA
}

// Precision is float16 on the GPU and float32 on the CPU.
func (i Info) Precision() sdruntime.Precision {
	if i.Accelerated() {
		return sdruntime.Float16
	}
	return sdruntime.Float32
}

// String is "cuda: NVIDIA GeForce RTX 3090 (24 GiB)" or "cpu: <reason>".
func (i Info) String() string {
	if !i.Accelerated() || len(i.GPUs) == 0 {
		return "cpu: " + i.Reason
	}
	g := i.GPUs[0]
	return fmt.Sprintf("cuda: %s (%s)", g.Name, humanize.IBytes(uint64(g.MemoryTotal)))
}

// Prober returns nvidia-smi style CSV: one "name, memory.total" row per GPU.
type Prober interface {
	QueryGPUs(ctx context.Context) (string, error)
}

// NvidiaSMI runs the nvidia-smi binary.
type NvidiaSMI struct {
	// Path defaults to "nvidia-smi" on PATH.
	Path string
	// Timeout defaults to 5s.
	Timeout time.Duration
}

// QueryGPUs implements Prober.
func (n NvidiaSMI) QueryGPUs(ctx context.Context) (string, error) {
	path := n.Path
	if path == "" {
		path = "nvidia-smi"
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path,
		"--query-gpu=name,memory.total",
		"--format=csv,noheader,nounits")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("nvidia-smi failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Detect probes for a usable GPU. It never fails: any problem selects the CPU.
func Detect(ctx context.Context, prober Prober) Info {
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok && HidesAllDevices(v) {
		return Info{Kind: CPU, Reason: fmt.Sprintf("CUDA_VISIBLE_DEVICES=%q hides all devices", v)}
	}
	if prober == nil {
		prober = NvidiaSMI{}
	}

	out, err := prober.QueryGPUs(ctx)
	if err != nil {
		return Info{Kind: CPU, Reason: err.Error()}
	}
	gpus, err := ParseGPUList(out)
	if err != nil {
		return Info{Kind: CPU, Reason: err.Error()}
	}
	return Info{Kind: CUDA, GPUs: gpus}
}

// HidesAllDevices reports whether a CUDA_VISIBLE_DEVICES value leaves no
// device visible. The runtime stops at the first invalid entry, so an empty
// or negative first entry hides everything.
func HidesAllDevices(v string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(v), ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return true
	}
	n, err := strconv.Atoi(first)
	return err == nil && n < 0
}

// ErrNoGPU is returned by ParseGPUList for empty output.
var ErrNoGPU = errors.New("no GPU reported")

// ParseGPUList parses "name, memory.total[MiB]" rows.
func ParseGPUList(output string) ([]GPU, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, ErrNoGPU
	}

	r := csv.NewReader(strings.NewReader(output))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	gpus := make([]GPU, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("unexpected field count: got %d, expected 2", len(rec))
		}
		mib, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse memory total: %w", err)
		}
		gpus = append(gpus, GPU{
			Name:        strings.TrimSpace(rec[0]),
			MemoryTotal: int64(mib * 1024 * 1024),
		})
	}
	return gpus, nil
}
