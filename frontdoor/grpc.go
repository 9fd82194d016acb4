// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package frontdoor

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/panjf2000/ants/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "document.DocumentService"

	// DefaultWorkers bounds concurrently handled requests.
	DefaultWorkers = 10

	// DefaultMaxMessageSize bounds gRPC messages in both directions.
	DefaultMaxMessageSize = 100 << 20

	methodUpload   = "/" + ServiceName + "/UploadDocument"
	methodGet      = "/" + ServiceName + "/GetDocument"
	methodDownload = "/" + ServiceName + "/DownloadDocument"
)

// DocumentServer is the server API for document.DocumentService.
type DocumentServer interface {
	UploadDocument(ctx context.Context, req *UploadRequest) (*UploadResponse, error)
	GetDocument(ctx context.Context, req *GetRequest) (*GetResponse, error)
	DownloadDocument(req *DownloadRequest, stream grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UploadDocument", Handler: uploadHandler},
		{MethodName: "GetDocument", Handler: getHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "DownloadDocument", Handler: downloadHandler, ServerStreams: true},
	},
	Metadata: "document.proto",
}

func uploadHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UploadRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentServer).UploadDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpload}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentServer).UploadDocument(ctx, req.(*UploadRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocumentServer).GetDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGet}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocumentServer).GetDocument(ctx, req.(*GetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func downloadHandler(srv any, stream grpc.ServerStream) error {
	in := new(DownloadRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DocumentServer).DownloadDocument(in, stream)
}

// rpcHandler adapts Service to DocumentServer.
type rpcHandler struct {
	svc *Service
}

func (h *rpcHandler) UploadDocument(ctx context.Context, req *UploadRequest) (*UploadResponse, error) {
	id, msg, err := h.svc.UploadDocument(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UploadResponse{DocumentID: id, Message: msg}, nil
}

func (h *rpcHandler) GetDocument(ctx context.Context, req *GetRequest) (*GetResponse, error) {
	name, content, err := h.svc.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetResponse{Filename: name, Content: content}, nil
}

// DownloadDocument relies on SendMsg blocking under transport flow control
// for backpressure.
func (h *rpcHandler) DownloadDocument(req *DownloadRequest, stream grpc.ServerStream) error {
	err := h.svc.DownloadDocument(stream.Context(), req.DocumentID, func(frame []byte) error {
		return stream.SendMsg(&DocumentChunk{FileData: frame})
	})
	return toStatus(err)
}

// toStatus maps service errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Server exposes a Service over gRPC.
type Server struct {
	grpc   *grpc.Server
	pool   *ants.Pool
	logger *slog.Logger
}

type serverConfig struct {
	workers        int
	maxMessageSize int
	logger         *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

// WithWorkers bounds how many requests are handled at once.
func WithWorkers(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxMessageSize bounds received and sent messages.
func WithMaxMessageSize(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxMessageSize = n
		}
	}
}

// WithServerLogger sets the server's logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewServer creates a gRPC server for svc. Every request runs on a bounded
// worker pool; callers beyond the pool size wait for a free worker.
func NewServer(svc *Service, opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{
		workers:        DefaultWorkers,
		maxMessageSize: DefaultMaxMessageSize,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := ants.NewPool(cfg.workers)
	if err != nil {
		return nil, err
	}

	gs := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.maxMessageSize),
		grpc.MaxSendMsgSize(cfg.maxMessageSize),
		grpc.ChainUnaryInterceptor(poolUnaryInterceptor(pool)),
		grpc.ChainStreamInterceptor(poolStreamInterceptor(pool)),
	)
	gs.RegisterService(&serviceDesc, &rpcHandler{svc: svc})

	return &Server{
		grpc:   gs,
		pool:   pool,
		logger: cfg.logger.With("component", "grpc-server", "workers", cfg.workers),
	}, nil
}

// Serve accepts connections on lis until Stop or GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("serving", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// GracefulStop waits for in-flight requests, then releases the pool.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
	s.pool.Release()
}

// Stop closes all connections immediately and releases the pool.
func (s *Server) Stop() {
	s.grpc.Stop()
	s.pool.Release()
}

func poolUnaryInterceptor(pool *ants.Pool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var (
			resp any
			err  error
		)
		done := make(chan struct{})
		if submitErr := pool.Submit(func() {
			defer close(done)
			resp, err = handler(ctx, req)
		}); submitErr != nil {
			return nil, status.Error(codes.Unavailable, submitErr.Error())
		}
		<-done
		return resp, err
	}
}

func poolStreamInterceptor(pool *ants.Pool) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		var err error
		done := make(chan struct{})
		if submitErr := pool.Submit(func() {
			defer close(done)
			err = handler(srv, ss)
		}); submitErr != nil {
			return status.Error(codes.Unavailable, submitErr.Error())
		}
		<-done
		return err
	}
}
