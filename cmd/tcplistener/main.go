// Command tcplistener prints how the server would parse each incoming
// request, then echoes that summary back to the client.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
	"github.com/Brownie44l1/staticd/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := server.DefaultConfig()
	cfg.Port = 42069

	cmd := &cobra.Command{
		Use:          "tcplistener",
		Short:        "Dump parsed request lines",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listen(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "address to bind")
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func listen(ctx context.Context, cfg server.Config) error {
	ep, err := server.Bind(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer ep.Close()
	fmt.Printf("Listening on %s...\n", ep.Addr())

	go func() {
		<-ctx.Done()
		ep.Close()
	}()

	buf := make([]byte, cfg.MaxRequestBytes)
	for {
		conn, err := ep.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Println("Accept error:", err)
			continue
		}
		handleConnection(conn, buf, cfg)
	}
}

func handleConnection(conn net.Conn, buf []byte, cfg server.Config) {
	defer conn.Close()

	raw, err := request.Read(conn, buf, cfg.ReceiveTimeout)
	if err != nil {
		fmt.Println("Read error:", err)
		return
	}

	req, err := request.Parse(raw)
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}

	var b strings.Builder
	fmt.Fprintln(&b, "Request Line")
	fmt.Fprintf(&b, "Method: %s\n", req.Method)
	fmt.Fprintf(&b, "Target: %s\n", req.Target)
	fmt.Fprintf(&b, "Version: %s\n", req.Version)
	fmt.Fprintln(&b, "Lines")
	for _, line := range req.Lines {
		fmt.Fprintf(&b, "%q\n", line)
	}
	fmt.Print(b.String())

	if err := response.Send(conn, response.OK([]byte(b.String()))); err != nil {
		fmt.Println("Write error:", err)
	}
}
