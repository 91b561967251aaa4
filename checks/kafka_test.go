package checks

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestKafka_NoBrokers(t *testing.T) {
	if err := Kafka().Check(context.Background()); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("Check() error = %v, want ErrNoBrokers", err)
	}
}

func TestKafka_AnyBrokerSuffices(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	k := Kafka(closedAddr(t), ln.Addr().String()).WithDialer(&kafka.Dialer{Timeout: time.Second})
	if err := k.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestKafka_AllDown(t *testing.T) {
	a, b := closedAddr(t), closedAddr(t)
	err := Kafka(a, b).WithDialer(&kafka.Dialer{Timeout: time.Second}).Check(context.Background())
	if err == nil {
		t.Fatal("Check() error = nil")
	}
	if !strings.Contains(err.Error(), a) || !strings.Contains(err.Error(), b) {
		t.Errorf("error should name every broker: %v", err)
	}
}

func TestKafka_IgnoresCloseError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	d := &kafka.Dialer{Timeout: time.Second, DialFunc: dialCloseErr}
	if err := Kafka(ln.Addr().String()).WithDialer(d).Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v, want nil once a broker answered", err)
	}
}
