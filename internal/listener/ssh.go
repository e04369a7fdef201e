package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener serves sessions over ssh. No client auth is asked for;
// identity is the game login, not the transport.
type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	// Closing the listener is what breaks the accept loop below.
	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
				slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
				continue
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConn(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConn(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr())

	// Closing the ssh connection unblocks the channel loop, so a
	// cancelled context can't leave handleConn stuck.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		l.serveSession(ctx, newChan)
	}
}

// serveSession accepts one session channel, waits for the client's
// shell request, and runs the game session over it.
func (l *SshListener) serveSession(ctx context.Context, newChan ssh.NewChannel) {
	ch, requests, err := newChan.Accept()
	if err != nil {
		slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
		return
	}
	defer ch.Close()

	// Clients won't forward input until the shell request is answered.
	// The pty request is refused so they keep local echo and line
	// buffering.
	shellReady := make(chan struct{})
	go func(in <-chan *ssh.Request) {
		for req := range in {
			switch req.Type {
			case "shell":
				req.Reply(true, nil)
				close(shellReady)
			default:
				req.Reply(false, nil)
			}
		}
	}(requests)

	select {
	case <-shellReady:
	case <-ctx.Done():
		return
	}

	l.cm.AcceptConnection(ctx, newCRLFReadWriter(ch))
}
