package installer

import (
	"context"
	"fmt"
	"net"
	"strings"

	"reef-installer/internal/config"
	"reef-installer/internal/runner"
)

// IPDetector is one way of finding the machine's primary IPv4 address.
type IPDetector interface {
	Name() string
	Detect(ctx context.Context) (string, error)
}

// RouteDetector asks the routing table which source address reaches Probe:
// `ip -4 route get <probe>` prints "... src <address> ...".
type RouteDetector struct {
	Runner runner.Runner
	Probe  string
}

func (d *RouteDetector) Name() string { return "ip route" }

func (d *RouteDetector) Detect(ctx context.Context) (string, error) {
	res, err := d.Runner.Run(ctx, runner.Command{Argv: []string{"ip", "-4", "route", "get", d.Probe}})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("ip route exited with code %d", res.ExitCode)
	}
	return parseRouteSource(res.Output), nil
}

// parseRouteSource returns the IPv4 address following "src", or "".
func parseRouteSource(output string) string {
	// The address is the token right after "src"
	fields := strings.Fields(output)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "src" && isIPv4(fields[i+1]) {
			return fields[i+1]
		}
	}
	return ""
}

// HostnameDetector takes the first IPv4 address listed by `hostname -I`.
type HostnameDetector struct {
	Runner runner.Runner
}

func (d *HostnameDetector) Name() string { return "hostname -I" }

func (d *HostnameDetector) Detect(ctx context.Context) (string, error) {
	res, err := d.Runner.Run(ctx, runner.Command{Argv: []string{"hostname", "-I"}})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("hostname exited with code %d", res.ExitCode)
	}
	for _, f := range strings.Fields(res.Output) {
		if isIPv4(f) {
			return f, nil
		}
	}
	return "", nil
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// ipDetectors returns the detection chain for the configured policy.
func (in *Installer) ipDetectors() []IPDetector {
	if in.Detectors != nil {
		return in.Detectors
	}
	chain := []IPDetector{&RouteDetector{Runner: in.Runner, Probe: in.Config.Network.Probe}}
	if in.Config.Network.Policy == config.NetworkFallback {
		chain = append(chain, &HostnameDetector{Runner: in.Runner})
	}
	return chain
}

// detectIP resolves the address passed to the installer. Under the strict
// policy an unresolved address is fatal; under the fallback policy the
// configured placeholder is used instead.
func (in *Installer) detectIP(ctx context.Context, rc *RunContext) error {
	cfg := in.Config.Network
	// An explicit address from config or --ip skips detection
	if cfg.IP != "" {
		rc.IP = cfg.IP
		in.Log.Info("Using configured IP address %s", rc.IP)
		return nil
	}

	// Try each detector in turn, the first address wins
	for _, d := range in.ipDetectors() {
		ip, err := d.Detect(ctx)
		if err != nil {
			in.Log.Debug("IP detection via %s failed: %v", d.Name(), err)
			continue
		}
		if ip == "" {
			in.Log.Debug("IP detection via %s returned nothing", d.Name())
			continue
		}
		rc.IP = ip
		in.Log.Info("Detected IP address %s (%s)", ip, d.Name())
		return nil
	}

	// Nothing found: placeholder under fallback, abort under strict
	if cfg.Policy == config.NetworkFallback {
		rc.IP = cfg.Placeholder
		in.Log.Warn("Could not detect IP address, using placeholder %s", rc.IP)
		return nil
	}
	return fmt.Errorf("could not detect the primary IPv4 address; set network.ip or use --ip")
}
