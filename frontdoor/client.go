package frontdoor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client calls a remote document.DocumentService.
type Client struct {
	conn   grpc.ClientConnInterface
	closer io.Closer
}

// Dial connects to a front door at target without transport security.
func Dial(target string, maxMessageSize int) (*Client, error) {
	if maxMessageSize <= 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(codecName),
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, closer: conn}, nil
}

// NewClient wraps an existing connection. Calls use the JSON codec
// regardless of the connection's defaults.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close closes a connection opened by Dial.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// UploadDocument uploads content and returns the assigned document ID and
// the server's message.
func (c *Client) UploadDocument(ctx context.Context, filename string, content []byte) (string, string, error) {
	resp := new(UploadResponse)
	req := &UploadRequest{Filename: filename, Content: content}
	if err := c.conn.Invoke(ctx, methodUpload, req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return "", "", fromStatus(err)
	}
	return resp.DocumentID, resp.Message, nil
}

// GetDocument fetches a whole document.
func (c *Client) GetDocument(ctx context.Context, id string) (string, []byte, error) {
	resp := new(GetResponse)
	if err := c.conn.Invoke(ctx, methodGet, &GetRequest{DocumentID: id}, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return "", nil, fromStatus(err)
	}
	return resp.Filename, resp.Content, nil
}

// DownloadDocument streams a document into w and returns the number of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], methodDownload, grpc.CallContentSubtype(codecName))
	if err != nil {
		return 0, fromStatus(err)
	}
	if err := stream.SendMsg(&DownloadRequest{DocumentID: id}); err != nil {
		return 0, fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		return 0, fromStatus(err)
	}

	var written int64
	for {
		chunk := new(DocumentChunk)
		err := stream.RecvMsg(chunk)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fromStatus(err)
		}
		n, err := w.Write(chunk.FileData)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

// fromStatus maps gRPC status codes back onto the package's sentinel errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.Internal:
		return fmt.Errorf("%w: %s", ErrInternal, st.Message())
	default:
		return err
	}
}
