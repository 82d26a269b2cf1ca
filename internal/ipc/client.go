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

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Nudge.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Nudge.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MenuList retrieves the current menu snapshot.
func (c *Client) MenuList() (*MenuListResponse, error) {
	var resp MenuListResponse
	if err := c.client.Call("Nudge.MenuList", MenuListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MenuSelect simulates clicking a menu entry.
func (c *Client) MenuSelect(id int64) (*MenuSelectResponse, error) {
	var resp MenuSelectResponse
	if err := c.client.Call("Nudge.MenuSelect", MenuSelectRequest{TaskID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskList returns tasks, optionally limited.
func (c *Client) TaskList(status string, limit int) (*TaskListResponse, error) {
	var resp TaskListResponse
	if err := c.client.Call("Nudge.TaskList", TaskListRequest{Status: status, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskAdd creates a new task.
func (c *Client) TaskAdd(req TaskAddRequest) (*TaskAddResponse, error) {
	var resp TaskAddResponse
	if err := c.client.Call("Nudge.TaskAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskDone marks a task completed.
func (c *Client) TaskDone(id int64) (*TaskDoneResponse, error) {
	var resp TaskDoneResponse
	if err := c.client.Call("Nudge.TaskDone", TaskDoneRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskRemove deletes a task.
func (c *Client) TaskRemove(id int64) (*TaskRemoveResponse, error) {
	var resp TaskRemoveResponse
	if err := c.client.Call("Nudge.TaskRemove", TaskRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckNow triggers an immediate check cycle.
func (c *Client) CheckNow() (*CheckNowResponse, error) {
	var resp CheckNowResponse
	if err := c.client.Call("Nudge.CheckNow", CheckNowRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Nudge.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves store diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Nudge.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
