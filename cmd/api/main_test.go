// Package main contains integration tests for the API server.
package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"
)

// startTestServer serves the given mux on an ephemeral port with the same
// timeouts as the real server and returns its address.
func startTestServer(t *testing.T, mux *http.ServeMux) (*http.Server, string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("server error: %v", err)
		}
	}()

	return server, ln.Addr().String()
}

// TestGracefulShutdown_InFlightRequests verifies that a slow analysis request
// still completes once shutdown has started. Ledger submissions must never be
// cut off mid-flight: an abandoned request could leave a mint without an
// audit record.
func TestGracefulShutdown_InFlightRequests(t *testing.T) {
	handlerStarted := make(chan struct{})
	handlerCanContinue := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		close(handlerStarted)
		// Simulates a slow ledger round trip.
		<-handlerCanContinue
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"analysis":{"authenticity_score":0.9}}`))
	})

	server, addr := startTestServer(t, mux)

	requestDone := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/analyze")
		if err != nil {
			t.Errorf("request error: %v", err)
		}
		requestDone <- resp
	}()

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler failed to start in time")
	}

	shutdownDone := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Errorf("shutdown error: %v", err)
		}
		close(shutdownDone)
	}()

	// Let shutdown begin, then release the in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(handlerCanContinue)

	var resp *http.Response
	select {
	case resp = <-requestDone:
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request did not complete")
	}

	select {
	case <-shutdownDone:
	case <-time.After(15 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	if resp == nil {
		t.Fatal("no response received")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Error("expected response body from in-flight request")
	}
}

// TestGracefulShutdown_Clean verifies an idle server shuts down without error.
func TestGracefulShutdown_Clean(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server, addr := startTestServer(t, mux)

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("expected clean shutdown, got error: %v", err)
	}
}

// TestSignalNotify verifies the termination signals the server listens for
// are delivered through the quit channel.
func TestSignalNotify(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			time.Sleep(50 * time.Millisecond)
			syscall.Kill(syscall.Getpid(), sig)
		}()

		select {
		case got := <-quit:
			if got != sig {
				t.Errorf("expected %v, got %v", sig, got)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("did not receive %v in time", sig)
		}
		signal.Stop(quit)
	}
}
