package checks

import (
	"context"
	"net"

	"github.com/jonwraymond/healthkit/health"
)

// TCPChecker opens and closes a TCP connection.
type TCPChecker struct {
	addr string
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// TCPDial probes addr ("host:port").
func TCPDial(addr string) *TCPChecker {
	var d net.Dialer
	return &TCPChecker{addr: addr, dial: d.DialContext}
}

// Check passes once the connection is established.
func (t *TCPChecker) Check(ctx context.Context) error {
	conn, err := t.dial(ctx, "tcp", t.addr)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}

var _ health.Checker = (*TCPChecker)(nil)
