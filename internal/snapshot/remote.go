package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/coder/websocket"
)

// RemoteClient streams a snapshot envelope to or from a companion process
// over a websocket connection — the same transport the MCP HTTP surface
// rides on, here repurposed as a push/pull channel for a snapshot blob
// instead of a JSON-RPC message stream.
type RemoteClient struct {
	conn *websocket.Conn
}

// DialRemote opens a websocket connection to a snapshot-serving companion
// process at url.
func DialRemote(ctx context.Context, url string) (*RemoteClient, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: dialing remote store at %s: %w", url, err)
	}
	return &RemoteClient{conn: conn}, nil
}

// Push writes repo's and cache's snapshot envelope to the remote endpoint
// as one binary websocket message.
func (c *RemoteClient) Push(ctx context.Context, envelope []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageBinary, envelope); err != nil {
		return fmt.Errorf("snapshot: pushing envelope to remote store: %w", err)
	}
	return nil
}

// Pull reads one snapshot envelope from the remote endpoint.
func (c *RemoteClient) Pull(ctx context.Context) ([]byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: pulling envelope from remote store: %w", err)
	}
	if typ != websocket.MessageBinary {
		return nil, fmt.Errorf("snapshot: remote store sent unexpected message type %v", typ)
	}
	return data, nil
}

// Close ends the session normally.
func (c *RemoteClient) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "snapshot session complete")
}

// ReaderFor pulls one envelope eagerly and returns an io.Reader over its
// bytes, suitable for passing directly to Restore.
func (c *RemoteClient) ReaderFor(ctx context.Context) (io.Reader, error) {
	data, err := c.Pull(ctx)
	if err != nil {
		return nil, err
	}
	return newByteReader(data), nil
}

func newByteReader(b []byte) io.Reader {
	return &byteReader{data: b}
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
