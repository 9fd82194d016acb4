// Package frontdoor accepts document uploads and serves stored documents.
//
// Service holds the transport-independent logic. Server exposes it as the
// gRPC service document.DocumentService, whose messages travel as JSON over a
// registered codec, and NewHTTPHandler exposes the same operations over HTTP.
// Client is the matching gRPC client.
//
//	svc, err := frontdoor.NewService(raw, publisher)
//	srv, err := frontdoor.NewServer(svc, frontdoor.WithWorkers(10))
//	lis, err := net.Listen("tcp", "0.0.0.0:50051")
//	err = srv.Serve(lis)
package frontdoor
