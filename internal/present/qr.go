package present

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode" // In-process QR rendering when qrencode is absent

	"reef-installer/internal/config"
	"reef-installer/internal/logger"
	"reef-installer/internal/runner"
)

// Encoder turns a payload into a printable QR block.
type Encoder interface {
	Encode(ctx context.Context, payload string) (string, error)
}

// ExternalEncoder shells out to qrencode.
type ExternalEncoder struct {
	Runner runner.Runner
	Binary string
}

// Encode runs `<binary> -t UTF8 <payload>` and returns its output.
func (e *ExternalEncoder) Encode(ctx context.Context, payload string) (string, error) {
	// UTF8 output prints as block characters in a terminal
	cmd := runner.Command{Argv: []string{e.Binary, "-t", "UTF8", payload}}
	res, err := e.Runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with code %d: %s", e.Binary, res.ExitCode, strings.TrimSpace(res.Output))
	}
	return strings.TrimRight(res.Output, "\n"), nil
}

// BuiltinEncoder renders QR codes in-process with half-height block characters.
type BuiltinEncoder struct{}

// Encode renders payload at medium error correction.
func (BuiltinEncoder) Encode(_ context.Context, payload string) (string, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return strings.TrimRight(q.ToSmallString(false), "\n"), nil
}

// Capability is the result of the startup QR probe. A nil Encoder means the
// report falls back to plain colored text.
type Capability struct {
	Encoder Encoder
	Source  string // "external", "builtin" or "none"
}

// Available reports whether a QR block can be rendered.
func (c Capability) Available() bool {
	return c.Encoder != nil
}

// packageManagers are tried in order when the external encoder is missing and
// installing it is allowed.
var packageManagers = [][]string{
	{"apt-get", "install", "-y"},
	{"dnf", "install", "-y"},
	{"yum", "install", "-y"},
}

// Probe decides once, at startup, how QR codes will be rendered.
func Probe(ctx context.Context, cfg config.QRConfig, r runner.Runner, log *logger.Logger) Capability {
	none := Capability{Source: "none"}
	builtin := Capability{Encoder: BuiltinEncoder{}, Source: "builtin"}

	// Fixed modes need no probing
	switch cfg.Mode {
	case config.QRNone:
		return none
	case config.QRBuiltin:
		return builtin
	}

	// Prefer the external encoder, then fall back per mode
	if external, ok := probeExternal(ctx, cfg, r, log); ok {
		return external
	}
	if cfg.Mode == config.QRAuto {
		log.Debug("%s not available, using builtin QR encoder", cfg.Binary)
		return builtin
	}
	log.Warn("%s not available, QR code will be shown as text", cfg.Binary)
	return none
}

func probeExternal(ctx context.Context, cfg config.QRConfig, r runner.Runner, log *logger.Logger) (Capability, bool) {
	ext := func(path string) Capability {
		return Capability{Encoder: &ExternalEncoder{Runner: r, Binary: path}, Source: "external"}
	}

	if path, err := r.LookPath(cfg.Binary); err == nil {
		return ext(path), true
	}
	if !cfg.InstallMissing {
		return Capability{}, false
	}

	// Try the first package manager present on this host
	for _, pm := range packageManagers {
		if _, err := r.LookPath(pm[0]); err != nil {
			continue
		}
		argv := append(append([]string(nil), pm...), cfg.Binary)
		log.Info("Installing %s with %s...", cfg.Binary, pm[0])
		res, err := r.Run(ctx, runner.Command{Argv: argv})
		if err != nil || res.ExitCode != 0 {
			log.Warn("Failed to install %s with %s (exit code %d)", cfg.Binary, pm[0], res.ExitCode)
			break
		}
		if path, err := r.LookPath(cfg.Binary); err == nil {
			return ext(path), true
		}
		break
	}
	return Capability{}, false
}
