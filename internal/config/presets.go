package config

import "fmt"

// Default installer argument template. IPADDRESS and DATABASE_IP both receive
// the detected address.
var defaultInstallerArgs = []string{
	"-i", "silent",
	"-DNODE_TYPE={{ .NodeType }}",
	"-DREALM_NAME={{ .Realm }}",
	"-DIPADDRESS={{ .IP }}",
	"-DDATABASE_IP={{ .IP }}",
	"-DFEATURE_FLAG={{ .Feature }}",
}

// Default returns the configuration of the named preset.
// An empty name selects PresetStrict.
func Default(preset string) (*Config, error) {
	if preset == "" {
		preset = PresetStrict
	}

	cfg := &Config{
		Preset:        preset,
		RequiredTools: []string{"ip", "systemctl"},
		Installer: InstallerConfig{
			Path:     "./DigitalReef*.bin",
			Binary:   "DigitalReef",
			WorkDir:  "/tmp/digitalreef-installer",
			NodeType: "ALL_IN_ONE",
			Realm:    "DigitalReef",
			Feature:  "true",
			Args:     append([]string(nil), defaultInstallerArgs...),
			Env: map[string]string{
				"LAX_DEBUG":     "true",
				"_JAVA_OPTIONS": "-Djava.io.tmpdir=/var/tmp",
			},
		},
		License: LicenseConfig{
			Destination: "/etc/digitalreef/license.dat", // outside every cleanup path
		},
		Services: ServicesConfig{
			Names:    []string{"httpd", "postgresql"},
			LogLevel: "err",
		},
		Cleanup: CleanupConfig{
			Paths: []string{
				"/opt/DigitalReef",
				"/var/lib/digitalreef",
				"/tmp/install.dir.*",
				"/tmp/DigitalReef*.log",
				"/root/.com.zerog.registry.xml",
				"/var/.com.zerog.registry.xml",
			},
		},
		Network: NetworkConfig{
			Policy:      NetworkStrict,
			Probe:       "8.8.8.8",
			Placeholder: "YOUR_IP_ADDRESS",
		},
		HostID: HostIDConfig{
			Script:        "/opt/DigitalReef/bin/hostid.sh",
			Field:         5,
			MissingScript: MissingScriptFail,
			FailOnEmpty:   true,
		},
		Present: PresentConfig{
			Port:          8443,
			SysInfoScript: "/opt/DigitalReef/bin/sysinfo.sh",
			MailTo:        "licensing@digitalreef.com",
			Subject:       "Digital Reef License Request",
		},
		QR: QRConfig{
			Mode:   QRAuto,
			Binary: "qrencode",
		},
	}

	switch preset {
	case PresetStrict:
	case PresetLenient:
		cfg.Network.Policy = NetworkFallback
		cfg.HostID.MissingScript = MissingScriptUnknown
		cfg.QR.InstallMissing = true
	default:
		return nil, fmt.Errorf("unknown preset %q (want %q or %q)", preset, PresetStrict, PresetLenient)
	}
	return cfg, nil
}
