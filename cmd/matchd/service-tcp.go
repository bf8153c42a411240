package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
)

// TCPService answers dispatch requests with a line-oriented protocol:
// each line in is a JSON value, and each line out is the JSON
// response from Process.
func (s *Service) TCPService(ctx context.Context, addr string) error {
	log.Printf("TCPService on %s", addr)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	ctl := make(chan bool, 1)

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}

		go func() {
			in := bufio.NewReader(conn)

			if err := s.Listener(ctx, in, conn, ctl); err != nil {
				if err != io.EOF {
					log.Printf("TCPService: %s", err)
				}
			}
			conn.Close()

			select {
			case <-ctl:
				l.Close()
			default:
			}
		}()
	}
}

// Listener serves the line protocol for one connection.
//
// Blank lines and lines starting with "#" are ignored.  The line
// "shutdown" closes the listener.
func (s *Service) Listener(ctx context.Context, in *bufio.Reader, out io.Writer, ctl chan bool) error {
	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		sl := strings.TrimSpace(string(line))

		if strings.HasPrefix(sl, "#") || sl == "" {
			continue
		}

		if sl == "shutdown" {
			log.Printf("TCP client says to shutdown")
			if ctl != nil {
				ctl <- true
			}
			return nil
		}

		response := s.Process(ctx, []byte(sl))

		if _, err := fmt.Fprintf(out, "%s\n", response); err != nil {
			return err
		}
	}

	return nil
}
