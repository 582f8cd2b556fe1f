package sftp

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/sftp"
	"github.com/studentaid/disbursement/internal/config"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"golang.org/x/crypto/ssh"
)

// Client is the SFTP backed Transport. Every call opens its own session so
// a dropped connection never poisons later batches.
type Client struct {
	cfg    config.SFTPConfig
	logger *logger.Logger
}

var _ Transport = (*Client)(nil)

func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{cfg: cfg.SFTP, logger: logger}
}

type session struct {
	conn *ssh.Client
	sftp *sftp.Client
}

func (s *session) Close() {
	s.sftp.Close()
	s.conn.Close()
}

func (c *Client) sshConfig() (*ssh.ClientConfig, error) {
	auth := []ssh.AuthMethod{}
	if c.cfg.PrivateKeyPath != "" {
		key, err := os.ReadFile(c.cfg.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.cfg.Password != "" {
		auth = append(auth, ssh.Password(c.cfg.Password))
	}

	return &ssh.ClientConfig{
		User: c.cfg.User,
		Auth: auth,
		// TODO: pin the exchange server host key once it is published in config
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.DialTimeout,
	}, nil
}

// connect dials with exponential backoff, bounded by DialRetries
func (c *Client) connect(ctx context.Context) (*session, error) {
	sshCfg, err := c.sshConfig()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid SFTP credentials configuration").
			Mark(ierr.ErrTransport)
	}

	var s *session
	attempt := 0
	operation := func() error {
		attempt++
		conn, err := ssh.Dial("tcp", c.cfg.GetAddress(), sshCfg)
		if err != nil {
			c.logger.Debugw("sftp dial failed", "address", c.cfg.GetAddress(), "attempt", attempt, "error", err)
			return err
		}
		client, err := sftp.NewClient(conn)
		if err != nil {
			conn.Close()
			return err
		}
		s = &session{conn: conn, sftp: client}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 0
	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.cfg.DialRetries), ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to connect to SFTP server %s", c.cfg.GetAddress()).
			WithReportableDetails(map[string]any{"attempts": attempt}).
			Mark(ierr.ErrTransport)
	}
	return s, nil
}

func (c *Client) List(ctx context.Context, dir string) ([]string, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	entries, err := s.sftp.ReadDir(dir)
	if err != nil {
		return nil, transportError(err, "list", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) Download(ctx context.Context, filePath string) ([]byte, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	f, err := s.sftp.Open(filePath)
	if err != nil {
		return nil, transportError(err, "open", filePath)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, transportError(err, "download", filePath)
	}
	return buf.Bytes(), nil
}

func (c *Client) Upload(ctx context.Context, filePath string, content []byte) error {
	s, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.sftp.MkdirAll(path.Dir(filePath)); err != nil {
		return transportError(err, "mkdir", path.Dir(filePath))
	}

	f, err := s.sftp.Create(filePath)
	if err != nil {
		return transportError(err, "create", filePath)
	}
	if _, err := io.Copy(f, bytes.NewReader(content)); err != nil {
		f.Close()
		return transportError(err, "upload", filePath)
	}
	if err := f.Close(); err != nil {
		return transportError(err, "upload", filePath)
	}

	c.logger.Infow("uploaded file", "path", filePath, "bytes", len(content))
	return nil
}

func (c *Client) Archive(ctx context.Context, filePath string) error {
	s, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.sftp.MkdirAll(c.cfg.ArchiveDir); err != nil {
		return transportError(err, "mkdir", c.cfg.ArchiveDir)
	}

	target := path.Join(c.cfg.ArchiveDir, path.Base(filePath))
	if err := s.sftp.Rename(filePath, target); err != nil {
		return transportError(err, "archive", filePath)
	}
	return nil
}

func transportError(err error, op, filePath string) error {
	return ierr.WithError(err).
		WithMessagef("sftp %s %s", op, filePath).
		WithHintf("Failed to %s %s on the SFTP server", op, filePath).
		Mark(ierr.ErrTransport)
}
