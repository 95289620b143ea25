package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start the watch workflow.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Cadence.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop the watch workflow.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Cadence.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Cadence.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Track registers a recording for evaluation tracking.
func (c *Client) Track(recordingID, title string) (*TrackResponse, error) {
	var resp TrackResponse
	req := TrackRequest{RecordingID: recordingID, Title: title}
	if err := c.client.Call("Cadence.Track", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel stops watching a recording.
func (c *Client) Cancel(recordingID string) (*CancelResponse, error) {
	var resp CancelResponse
	req := CancelRequest{RecordingID: recordingID}
	if err := c.client.Call("Cadence.Cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recheck requeues failed or timed-out recordings for another pass.
func (c *Client) Recheck(recordingIDs []string) (*RecheckResponse, error) {
	var resp RecheckResponse
	req := RecheckRequest{RecordingIDs: recordingIDs}
	if err := c.client.Call("Cadence.Recheck", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingList returns tracked recordings optionally filtered by states.
func (c *Client) TrackingList(states []string) (*TrackingListResponse, error) {
	var resp TrackingListResponse
	req := TrackingListRequest{States: states}
	if err := c.client.Call("Cadence.TrackingList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingDescribe returns details for a single tracked recording.
func (c *Client) TrackingDescribe(recordingID string) (*TrackingDescribeResponse, error) {
	var resp TrackingDescribeResponse
	req := TrackingDescribeRequest{RecordingID: recordingID}
	if err := c.client.Call("Cadence.TrackingDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingRemove deletes specific tracking rows.
func (c *Client) TrackingRemove(recordingIDs []string) (*TrackingRemoveResponse, error) {
	var resp TrackingRemoveResponse
	req := TrackingRemoveRequest{RecordingIDs: recordingIDs}
	if err := c.client.Call("Cadence.TrackingRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingClear removes all tracking rows.
func (c *Client) TrackingClear() (*TrackingClearResponse, error) {
	var resp TrackingClearResponse
	if err := c.client.Call("Cadence.TrackingClear", TrackingClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingClearTerminal removes completed, cancelled, failed, and timed-out rows.
func (c *Client) TrackingClearTerminal() (*TrackingClearTerminalResponse, error) {
	var resp TrackingClearTerminalResponse
	if err := c.client.Call("Cadence.TrackingClearTerminal", TrackingClearTerminalRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackingHealth returns tracking table diagnostics.
func (c *Client) TrackingHealth() (*TrackingHealthResponse, error) {
	var resp TrackingHealthResponse
	if err := c.client.Call("Cadence.TrackingHealth", TrackingHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Cadence.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PendingReviews lists evaluations waiting on a human reviewer.
func (c *Client) PendingReviews(limit int) (*PendingReviewsResponse, error) {
	var resp PendingReviewsResponse
	req := PendingReviewsRequest{Limit: limit}
	if err := c.client.Call("Cadence.PendingReviews", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitReview records a human review for an evaluation.
func (c *Client) SubmitReview(req SubmitReviewRequest) (*SubmitReviewResponse, error) {
	var resp SubmitReviewResponse
	if err := c.client.Call("Cadence.SubmitReview", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Cadence.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Cadence.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
