package deploy

import (
	"context"
	"errors"
	"fmt"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"io"
	"io/fs"
	"kadmeia/internal/domain/config"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"
)

type Result struct {
	Files int
	Bytes int64
}

// Uploader mirrors a local directory onto a remote one over SFTP. Remote
// files that no longer exist locally are left alone.
type Uploader struct {
	cfg config.DeployConfig
}

func NewUploader(cfg config.DeployConfig) (*Uploader, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, errors.New("deploy: missing host or user")
	}
	if cfg.Pass == "" && cfg.KeyPath == "" {
		return nil, errors.New("deploy: missing password or key_path")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &Uploader{cfg: cfg}, nil
}

func (u *Uploader) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if u.cfg.KeyPath != "" {
		key, err := os.ReadFile(u.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("deploy: read key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("deploy: parse key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if u.cfg.Pass != "" {
		auth = append(auth, ssh.Password(u.cfg.Pass))
	}

	cb, err := u.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            u.cfg.User,
		Auth:            auth,
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}, nil
}

func (u *Uploader) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if u.cfg.InsecureIgnoreHostKey {
		log.Printf("[deploy] host key verification disabled")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	file := u.cfg.KnownHosts
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("deploy: locate known_hosts: %w", err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("deploy: load known_hosts: %w", err)
	}
	return cb, nil
}

func (u *Uploader) dial(ctx context.Context) (*ssh.Client, error) {
	sshCfg, err := u.clientConfig()
	if err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("%s:%d", u.cfg.Host, u.cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		// reap the late connection, if any
		go func() {
			if r := <-ch; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, fmt.Errorf("deploy: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("deploy: dial %s: %w", addr, r.err)
		}
		return r.client, nil
	}
}

// Upload copies every file under localDir to the remote directory.
func (u *Uploader) Upload(ctx context.Context, localDir string) (Result, error) {
	var res Result
	info, err := os.Stat(localDir)
	if err != nil {
		return res, fmt.Errorf("deploy: %w", err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("deploy: %s is not a directory", localDir)
	}

	sshClient, err := u.dial(ctx)
	if err != nil {
		return res, err
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return res, fmt.Errorf("deploy: new sftp client: %w", err)
	}
	defer cli.Close()

	err = filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		remote := path.Join(u.cfg.RemoteDir, filepath.ToSlash(rel))
		if d.IsDir() {
			if err := cli.MkdirAll(remote); err != nil {
				return fmt.Errorf("mkdir %s: %w", remote, err)
			}
			return nil
		}
		n, err := uploadFile(cli, p, remote)
		if err != nil {
			return err
		}
		res.Files++
		res.Bytes += n
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("deploy: %w", err)
	}
	log.Printf("[deploy] uploaded %d files (%d bytes) to %s:%s", res.Files, res.Bytes, u.cfg.Host, u.cfg.RemoteDir)
	return res, nil
}

func uploadFile(cli *sftp.Client, local, remote string) (int64, error) {
	src, err := os.Open(local)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := cli.Create(remote)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", remote, err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("upload %s: %w", remote, err)
	}
	return n, nil
}
