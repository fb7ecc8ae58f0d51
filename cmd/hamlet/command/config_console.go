package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/listener"
	"golang.org/x/crypto/ssh"
)

// ConsolePasswordEnv supplies the ssh console password when the config
// leaves it empty.
const ConsolePasswordEnv = "HAMLET_CONSOLE_PASSWORD"

type ConsoleConfig struct {
	MaxSessions int              `json:"max_sessions"`
	Password    string           `json:"password,omitempty"`
	Color       bool             `json:"color"`
	Listeners   []ListenerConfig `json:"listeners"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.MaxSessions < 0 {
		el.Add(fmt.Errorf("console: max_sessions must not be negative"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("console listener %d: %w", i, err))
		}
	}

	return el.Err()
}

func (c *ConsoleConfig) password() string {
	if c.Password != "" {
		return c.Password
	}
	return os.Getenv(ConsolePasswordEnv)
}

type ListenerType int

const (
	ListenerTypeTelnet ListenerType = iota
	ListenerTypeSSH
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Host        string       `json:"host,omitempty"`
	Port        uint16       `json:"port"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.Protocol == ListenerTypeTelnet && cl.HostKeyPath != "" {
		el.Add(fmt.Errorf("host_key_path only applies to ssh listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) buildListener(cm *listener.ConnectionManager, password string) (worker, error) {
	switch cl.Protocol {
	case ListenerTypeTelnet:
		if password != "" {
			slog.Warn("console password does not apply to telnet listeners", "port", cl.Port)
		}
		return listener.NewTelnetListener(cl.Port, cm, listener.WithTelnetHost(cl.Host)), nil
	case ListenerTypeSSH:
		hostKey, err := cl.loadOrGenerateHostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		opts := []listener.SshOpt{listener.WithSshHost(cl.Host)}
		if password != "" {
			opts = append(opts, listener.WithSshPassword(password))
		}
		return listener.NewSshListener(cl.Port, cm, hostKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}

func (cl *ListenerConfig) loadOrGenerateHostKey() (ssh.Signer, error) {
	if cl.HostKeyPath != "" {
		keyBytes, err := os.ReadFile(cl.HostKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
		}
		return signer, nil
	}

	slog.Warn("no host_key_path configured for ssh console, generating ephemeral key", "port", cl.Port)
	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer from ephemeral key: %w", err)
	}
	return signer, nil
}
