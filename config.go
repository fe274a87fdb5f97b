package tftp

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// AddressFamily selects which IP family a transfer should use.
type AddressFamily uint8

const (
	Unspec AddressFamily = iota
	IPv4
	IPv6
)

func (f AddressFamily) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return "unspec"
	}
}

func parseAddressFamily(s string) (AddressFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspec", "any":
		return Unspec, nil
	case "ipv4", "4":
		return IPv4, nil
	case "ipv6", "6":
		return IPv6, nil
	default:
		return Unspec, fmt.Errorf("unknown address family %q", s)
	}
}

// ParseAddressFamily is the exported form of parseAddressFamily, used by
// callers (such as the cobra CLI) translating a user-supplied flag value.
func ParseAddressFamily(s string) (AddressFamily, error) {
	return parseAddressFamily(s)
}

const (
	defaultServerPort  = uint16(69)
	defaultRxTimeoutMs = uint32(5000)
)

// Config holds the options a Client needs to reach a TFTP server.
// A zero Config is not valid; use DefaultConfig as a starting point.
type Config struct {
	ServerHostname        string
	ServerPort            uint16
	ServerAddrFamily      AddressFamily
	RxInactivityTimeoutMs uint32
}

// DefaultConfig returns the builtin defaults: port 69, unspecified address
// family (IPv6 attempted first, IPv4 on fallback) and a 5s inactivity
// timeout.
func DefaultConfig() Config {
	return Config{
		ServerPort:            defaultServerPort,
		ServerAddrFamily:      Unspec,
		RxInactivityTimeoutMs: defaultRxTimeoutMs,
	}
}

func (c Config) validate() error {
	if c.ServerHostname == "" {
		return newErr(KindCfgInvalid, fmt.Errorf("server hostname is empty"))
	}
	if c.RxInactivityTimeoutMs == 0 {
		return newErr(KindCfgInvalid, fmt.Errorf("receive inactivity timeout must be non-zero"))
	}
	return nil
}

// LoadConfigFile parses an INI file with a single [tftp] section and
// overlays it on top of DefaultConfig. Missing keys fall back to the
// builtin defaults; it is not an error for the file to only set a subset of
// the known keys.
//
//	[tftp]
//	hostname = tftp.example.test
//	port = 69
//	family = unspec
//	timeout_ms = 5000
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := ini.Load(path)
	if err != nil {
		return Config{}, newErr(KindCfgInvalid, err)
	}

	section := raw.Section("tftp")

	if key := section.Key("hostname"); key.String() != "" {
		cfg.ServerHostname = key.String()
	}

	if key := section.Key("port"); key.String() != "" {
		port, err := strconv.ParseUint(key.String(), 10, 16)
		if err != nil {
			return Config{}, newErr(KindCfgInvalid, fmt.Errorf("invalid port %q: %w", key.String(), err))
		}
		cfg.ServerPort = uint16(port)
	}

	if key := section.Key("family"); key.String() != "" {
		family, err := parseAddressFamily(key.String())
		if err != nil {
			return Config{}, newErr(KindCfgInvalid, err)
		}
		cfg.ServerAddrFamily = family
	}

	if key := section.Key("timeout_ms"); key.String() != "" {
		timeout, err := strconv.ParseUint(key.String(), 10, 32)
		if err != nil {
			return Config{}, newErr(KindCfgInvalid, fmt.Errorf("invalid timeout_ms %q: %w", key.String(), err))
		}
		cfg.RxInactivityTimeoutMs = uint32(timeout)
	}

	logger.Debugf("[CONFIG] loaded %+v from %s", cfg, path)
	return cfg, nil
}
