package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"nudge/internal/daemon"
	"nudge/internal/logging"
	"nudge/internal/reminder"
	"nudge/internal/tasks"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Nudge", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually before the next start"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func convertTask(task *tasks.Task) TaskDTO {
	return TaskDTO{
		ID:                task.ID,
		Content:           task.Content,
		Priority:          task.Priority,
		Status:            string(task.Status),
		DueTime:           formatTimestamp(task.DueTime, task.DueTimeRaw),
		CreatedAt:         task.CreatedAt.Format(time.RFC3339),
		LastNotifiedAt:    formatTimestamp(task.LastNotifiedAt, task.LastNotifiedRaw),
		NotificationCount: task.NotificationCount,
	}
}

func convertCycle(result *reminder.CycleResult) *CycleSummary {
	if result == nil {
		return nil
	}
	return &CycleSummary{
		CycleID:   result.CycleID,
		Evaluated: result.Evaluated,
		Notified:  result.Notified,
		Completed: result.Completed,
		Postponed: result.Postponed,
		Errors:    result.Errors,
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockPath
	resp.SocketPath = status.SocketPath
	resp.TotalTasks = status.TaskStats.Total
	resp.PendingTasks = status.TaskStats.Pending
	resp.DoneTasks = status.TaskStats.Done
	resp.LastCycle = convertCycle(status.LastCycle)
	resp.LastCycleError = status.LastCycleError
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) MenuList(_ MenuListRequest, resp *MenuListResponse) error {
	entries := s.daemon.Surface().Entries()
	resp.Entries = make([]MenuEntryDTO, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, MenuEntryDTO{Label: entry.Label, TaskID: entry.TaskID})
	}
	return nil
}

func (s *service) MenuSelect(req MenuSelectRequest, resp *MenuSelectResponse) error {
	if req.TaskID <= 0 {
		return fmt.Errorf("invalid task id %d", req.TaskID)
	}
	if err := s.daemon.MenuSelect(s.ctx, req.TaskID); err != nil {
		resp.Handled = false
		resp.Message = err.Error()
		return nil
	}
	resp.Handled = true
	return nil
}

func (s *service) TaskList(req TaskListRequest, resp *TaskListResponse) error {
	store := s.daemon.TaskStore()

	var list []*tasks.Task
	var err error
	if req.Status == "" || req.Status == string(tasks.StatusPending) {
		list, err = store.Pending(s.ctx, req.Limit)
	} else {
		return fmt.Errorf("unsupported task listing status %q", req.Status)
	}
	if err != nil {
		return err
	}

	resp.Tasks = make([]TaskDTO, 0, len(list))
	for _, task := range list {
		resp.Tasks = append(resp.Tasks, convertTask(task))
	}
	return nil
}

func (s *service) TaskAdd(req TaskAddRequest, resp *TaskAddResponse) error {
	var due *time.Time
	if req.DueTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueTime)
		if err != nil {
			return fmt.Errorf("parse due time: %w", err)
		}
		due = &parsed
	}
	priority := req.Priority
	if priority == 0 {
		priority = 3
	}

	task, err := s.daemon.TaskStore().Add(s.ctx, req.Content, due, priority)
	if err != nil {
		return err
	}
	resp.Task = convertTask(task)

	s.log().Info("task added via IPC",
		logging.Int64(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldEventType, "task_added"))
	s.daemon.RefreshDisplay(s.ctx)
	return nil
}

func (s *service) TaskDone(req TaskDoneRequest, resp *TaskDoneResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid task id %d", req.ID)
	}
	if err := s.daemon.TaskStore().SetStatus(s.ctx, req.ID, tasks.StatusDone); err != nil {
		return err
	}
	resp.Done = true
	s.daemon.RefreshDisplay(s.ctx)
	return nil
}

func (s *service) TaskRemove(req TaskRemoveRequest, resp *TaskRemoveResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid task id %d", req.ID)
	}
	removed, err := s.daemon.TaskStore().Remove(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.daemon.RefreshDisplay(s.ctx)
	return nil
}

func (s *service) CheckNow(_ CheckNowRequest, resp *CheckNowResponse) error {
	s.log().Debug("manual check cycle requested")
	result, err := s.daemon.CheckCycle(s.ctx)
	if err != nil {
		return err
	}
	if summary := convertCycle(&result); summary != nil {
		resp.Cycle = *summary
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	if err := s.daemon.TestNotification(s.ctx); err != nil {
		resp.Sent = false
		resp.Message = err.Error()
		return nil
	}
	resp.Sent = true
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.TaskStore().CheckHealth(s.ctx)
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TableExists = health.TableExists
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalTasks = health.TotalTasks
	resp.Error = health.Error
	if err != nil && resp.Error == "" {
		resp.Error = err.Error()
	}
	return nil
}
