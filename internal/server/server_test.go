package server_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/client"
	"github.com/omochice/framechat/internal/server"
	"github.com/omochice/framechat/pkg/protocol"
	"github.com/rs/zerolog"
)

func startServer(t *testing.T, mode server.Mode) *server.Server {
	t.Helper()
	srv := server.New("127.0.0.1:0", mode, zerolog.Nop())
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

type acceptResult struct {
	stream chat.Stream
	err    error
}

func acceptAsync(srv *server.Server) <-chan acceptResult {
	ch := make(chan acceptResult, 1)
	go func() {
		stream, err := srv.Accept(context.Background())
		ch <- acceptResult{stream, err}
	}()
	return ch
}

type endpoint struct {
	result chat.Result
	err    error
	shown  string
}

func converse(role chat.Role, stream chat.Stream, input string) <-chan endpoint {
	ch := make(chan endpoint, 1)
	go func() {
		defer stream.Close()
		var shown bytes.Buffer
		conv := chat.New(role, stream,
			chat.NewLineReader(strings.NewReader(input)),
			chat.NewConsoleSink(&shown, role.Peer(), false))
		result, err := conv.Run()
		ch <- endpoint{result, err, shown.String()}
	}()
	return ch
}

func wait[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
		panic("unreachable")
	}
}

func TestServer_Listen_InvalidMode(t *testing.T) {
	srv := server.New("127.0.0.1:0", server.Mode("udp"), zerolog.Nop())
	if err := srv.Listen(); err == nil {
		srv.Close()
		t.Fatal("Listen() expected error for unknown mode")
	}
}

func TestServer_Listen_AddressInUse(t *testing.T) {
	srv := startServer(t, server.ModeTCP)

	other := server.New(srv.Addr(), server.ModeTCP, zerolog.Nop())
	if err := other.Listen(); err == nil {
		other.Close()
		t.Fatal("Listen() expected error for an address in use")
	}
}

func TestServer_Accept_NotListening(t *testing.T) {
	srv := server.New("127.0.0.1:0", server.ModeTCP, zerolog.Nop())
	if _, err := srv.Accept(context.Background()); err == nil {
		t.Error("Accept() expected error before Listen")
	}
}

func TestServer_Accept_Canceled(t *testing.T) {
	srv := startServer(t, server.ModeAuto)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := srv.Accept(ctx)
		done <- err
	}()

	cancel()
	if err := wait(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Accept() error = %v, want context.Canceled", err)
	}
}

func TestServer_AcceptsSinglePeer(t *testing.T) {
	srv := startServer(t, server.ModeTCP)
	addr := srv.Addr()
	accepted := acceptAsync(srv)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	defer conn.Close()

	res := wait(t, accepted)
	if res.err != nil {
		t.Fatalf("Accept() error = %v", res.err)
	}
	defer res.stream.Close()

	if second, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		second.Close()
		t.Error("second connection succeeded after the first peer was accepted")
	}
}

func TestServer_Conversation(t *testing.T) {
	tests := []struct {
		name      string
		mode      server.Mode
		transport string
	}{
		{"auto with tcp client", server.ModeAuto, client.TransportTCP},
		{"auto with websocket client", server.ModeAuto, client.TransportWebSocket},
		{"tcp only", server.ModeTCP, client.TransportTCP},
		{"websocket only", server.ModeWebSocket, client.TransportWebSocket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startServer(t, tt.mode)
			accepted := acceptAsync(srv)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			clientStream, err := client.Dial(ctx, tt.transport, srv.Addr())
			if err != nil {
				t.Fatalf("Dial() error = %v", err)
			}

			res := wait(t, accepted)
			if res.err != nil {
				t.Fatalf("Accept() error = %v", res.err)
			}

			big := strings.Repeat("z", 70_000)
			initiator := converse(chat.Initiator, clientStream, "hello\n\nFin\n")
			responder := converse(chat.Responder, res.stream, "hi\n"+big+"\n")

			c := wait(t, initiator)
			s := wait(t, responder)

			if c.err != nil || c.result.Reason != chat.ReasonSentinelSent {
				t.Errorf("initiator = %v, %v", c.result.Reason, c.err)
			}
			if s.err != nil || s.result.Reason != chat.ReasonSentinelReceived {
				t.Errorf("responder = %v, %v", s.result.Reason, s.err)
			}

			wantClient := "Message from server: hi\nMessage from server: " + big + "\n"
			if c.shown != wantClient {
				t.Errorf("initiator displayed %d bytes, want %d", len(c.shown), len(wantClient))
			}
			wantServer := "Message from client: hello\nMessage from client: \nMessage from client: Fin\n"
			if s.shown != wantServer {
				t.Errorf("responder displayed %q, want %q", s.shown, wantServer)
			}
		})
	}
}

func TestServer_PeerLeavesBeforePrefix(t *testing.T) {
	srv := startServer(t, server.ModeAuto)
	accepted := acceptAsync(srv)

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	conn.Write([]byte{0, 0})
	conn.Close()

	res := wait(t, accepted)
	if res.err != nil {
		t.Fatalf("Accept() error = %v", res.err)
	}

	s := wait(t, converse(chat.Responder, res.stream, ""))
	if s.result.Reason != chat.ReasonPeerClosed || !errors.Is(s.err, protocol.ErrPeerClosed) {
		t.Errorf("responder = %v, %v; want peer closed", s.result.Reason, s.err)
	}
}

func TestServer_WebSocketModeRejectsRawTCP(t *testing.T) {
	srv := startServer(t, server.ModeWebSocket)
	accepted := acceptAsync(srv)

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	if err := protocol.SendMessage(conn, []byte("not an upgrade request")); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	conn.Close()

	if res := wait(t, accepted); res.err == nil {
		res.stream.Close()
		t.Error("Accept() expected upgrade error")
	}
}
