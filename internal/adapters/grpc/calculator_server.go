package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
)

// CalculatorServer serves the calculator service on a Unix domain socket
type CalculatorServer struct {
	service  *CalculatorService
	logger   common.Logger
	listener net.Listener

	// Shutdown coordination
	shutdownChan chan os.Signal
	done         chan struct{}
	stopOnce     sync.Once
}

// NewCalculatorServer listens on socketPath, replacing a stale socket file
func NewCalculatorServer(service *CalculatorService, logger common.Logger, socketPath string) (*CalculatorServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := &CalculatorServer{
		service:      service,
		logger:       logger,
		listener:     listener,
		shutdownChan: make(chan os.Signal, 1),
		done:         make(chan struct{}),
	}
	signal.Notify(server.shutdownChan, os.Interrupt, syscall.SIGTERM)

	return server, nil
}

// Addr returns the socket address
func (s *CalculatorServer) Addr() string {
	return s.listener.Addr().String()
}

// Done is closed once a shutdown has been requested
func (s *CalculatorServer) Done() <-chan struct{} {
	return s.done
}

// Start serves requests until a signal arrives or Stop is called
func (s *CalculatorServer) Start() error {
	s.logger.Log("INFO", "Calculator server listening", map[string]interface{}{
		"socket": s.Addr(),
	})

	go s.handleShutdown()

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(s.contextLogger, s.requestLogger))
	RegisterCalculatorServiceServer(grpcServer, s.service)

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-s.done:
		s.logger.Log("INFO", "Initiating graceful shutdown of gRPC server", nil)
		grpcServer.GracefulStop()
		return nil
	}
}

// Stop requests a graceful shutdown
func (s *CalculatorServer) Stop() {
	s.stopOnce.Do(func() {
		signal.Stop(s.shutdownChan)
		close(s.done)
	})
}

func (s *CalculatorServer) handleShutdown() {
	select {
	case sig := <-s.shutdownChan:
		s.logger.Log("INFO", "Shutdown signal received, stopping daemon", map[string]interface{}{
			"signal": sig.String(),
		})
		s.Stop()
	case <-s.done:
	}
}

// contextLogger makes the server logger available to handlers
func (s *CalculatorServer) contextLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	return handler(common.WithLogger(ctx, s.logger), req)
}

func (s *CalculatorServer) requestLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	metadata := map[string]interface{}{
		"method":   info.FullMethod,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		s.logger.Log("WARNING", "RPC failed", metadata)
	} else {
		s.logger.Log("DEBUG", "RPC served", metadata)
	}
	return resp, err
}
