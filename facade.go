package tftp

import (
	"sync"
	"time"
)

// Client is the Session Facade named in SPEC_FULL.md §4.6. It materializes
// the reference design's process-wide globals (default config, last-used
// address family, serialization lock) as explicit state owned by a value,
// per SPEC_FULL.md §9 design notes, rather than package-level globals.
//
// At most one transfer runs at a time per Client; a second Get/Put call
// made while one is already running fails fast with KindLock instead of
// queueing.
type Client struct {
	mu sync.Mutex // serializes Get/Put: at-most-one-transfer invariant

	cfgMu          sync.Mutex
	cfg            Config
	lastUsedFamily AddressFamily

	SocketOptions SocketOptions
	Metrics       *Collector
}

// NewClient initializes a Client with defaultCfg, or, when configFilePath is
// non-empty, with the INI file at that path loaded over DefaultConfig (see
// LoadConfigFile). In the second case the loaded config replaces defaultCfg
// entirely: fields of defaultCfg are not merged into it. This is the `init`
// entry point of SPEC_FULL.md §6.
func NewClient(defaultCfg Config, configFilePath string) (*Client, error) {
	cfg := defaultCfg
	if configFilePath != "" {
		loaded, err := LoadConfigFile(configFilePath)
		if err != nil {
			return nil, newErr(KindFaultInit, err)
		}
		cfg = loaded
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

// SetDefaultConfig replaces the config used by future Get/Put calls that
// don't supply their own override. It takes the same lock that serializes
// Get/Put and fails fast with KindLock while a transfer is running.
func (c *Client) SetDefaultConfig(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if !c.mu.TryLock() {
		return newErr(KindLock, nil)
	}
	defer c.mu.Unlock()
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	c.cfg = cfg
	return nil
}

// LastUsedFamily reports the address family the most recently successful
// transfer used. The value is only recorded: connectAndRequest does not read
// it, and an Unspec transfer always tries IPv6 first.
func (c *Client) LastUsedFamily() AddressFamily {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return c.lastUsedFamily
}

func (c *Client) effectiveConfig(override *Config) Config {
	if override != nil {
		return *override
	}
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return c.cfg
}

// Get performs a read (RRQ) transfer: remotePath is read from the server and
// written to localPath.
func (c *Client) Get(override *Config, localPath, remotePath string, mode TransferMode) error {
	return c.transfer(dirGet, override, localPath, remotePath, mode)
}

// Put performs a write (WRQ) transfer: localPath is read and written to
// remotePath on the server.
func (c *Client) Put(override *Config, localPath, remotePath string, mode TransferMode) error {
	return c.transfer(dirPut, override, localPath, remotePath, mode)
}

func (c *Client) transfer(dir direction, override *Config, localPath, remotePath string, mode TransferMode) error {
	if !c.mu.TryLock() {
		return newErr(KindLock, nil)
	}
	defer c.mu.Unlock()

	cfg := c.effectiveConfig(override)
	if err := cfg.validate(); err != nil {
		return err
	}

	var f *file
	var err error
	if dir == dirGet {
		f, err = openFileWrite(localPath)
	} else {
		f, err = openFileRead(localPath)
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.close() }()

	opcode := OpRRQ
	if dir == dirPut {
		opcode = OpWRQ
	}

	t, family, reqBytes, err := c.connectAndRequest(cfg, opcode, remotePath, mode)
	if err != nil {
		return err
	}
	defer func() { _ = t.close() }()

	rxTimeout := time.Duration(cfg.RxInactivityTimeoutMs) * time.Millisecond
	sess := newSession(dir, localPath, remotePath, mode, t, f, rxTimeout, c.Metrics)
	// The initial RRQ/WRQ is the first "last sent packet": if the server
	// never answers, the Engine retransmits it like any other step.
	sess.recordSent(reqBytes)

	logger.Infof("[FACADE][%s] starting session=%s remote=%q local=%q family=%s", dir, sess.id, remotePath, localPath, family)
	start := time.Now()
	err = runEngine(sess)
	elapsed := time.Since(start)

	c.Metrics.observeTransfer(dir.String(), KindOf(err), elapsed.Seconds())

	if err != nil {
		logger.Warnf("[FACADE][%s] session=%s failed: %v", dir, sess.id, err)
		return err
	}

	c.cfgMu.Lock()
	c.lastUsedFamily = family
	c.cfgMu.Unlock()

	logger.Infof("[FACADE][%s] session=%s complete in %s", dir, sess.id, elapsed)
	return nil
}

// connectAndRequest opens a transport and sends the initial RRQ/WRQ,
// applying the IPv6→IPv4 failover described in SPEC_FULL.md §4.3/§4.6: when
// the configured family is Unspec and the hostname isn't a numeric literal,
// a failure to open or to send on IPv6 is retried once on IPv4.
func (c *Client) connectAndRequest(cfg Config, opcode Opcode, remotePath string, mode TransferMode) (*transport, AddressFamily, []byte, error) {
	reqBytes, err := encodeRequest(opcode, remotePath, mode)
	if err != nil {
		return nil, Unspec, nil, err
	}

	familyTmp := cfg.ServerAddrFamily
	if familyTmp == Unspec {
		familyTmp = IPv6
	}

	for {
		t, literal, openErr := openTransport(cfg.ServerHostname, cfg.ServerPort, familyTmp, c.SocketOptions)
		if openErr != nil {
			if cfg.ServerAddrFamily == Unspec && familyTmp == IPv6 && !literal {
				logger.Debugf("[FACADE] IPv6 open failed (%v), falling back to IPv4", openErr)
				familyTmp = IPv4
				continue
			}
			return nil, Unspec, nil, openErr
		}

		if sendErr := t.send(reqBytes); sendErr != nil {
			_ = t.close()
			if cfg.ServerAddrFamily == Unspec && familyTmp == IPv6 && !literal {
				logger.Debugf("[FACADE] IPv6 send failed (%v), falling back to IPv4", sendErr)
				familyTmp = IPv4
				continue
			}
			return nil, Unspec, nil, sendErr
		}

		c.Metrics.observeSent(opcode)
		return t, familyTmp, reqBytes, nil
	}
}
