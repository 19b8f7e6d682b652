package ipc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// fakeDaemon implements Daemon with scripted results.
type fakeDaemon struct {
	reloadErr   error
	reloads     int
	exits       int
	monitors    []MonitorInfo
	monitorsErr error
}

func (d *fakeDaemon) ReloadConfig() error {
	d.reloads++
	return d.reloadErr
}

func (d *fakeDaemon) Status() StatusData {
	return StatusData{BorderCount: 3, VisibleCount: 2, Backend: "v2", FPS: 60, ConfigPath: "/tmp/config.yaml"}
}

func (d *fakeDaemon) Monitors() ([]MonitorInfo, error) {
	return d.monitors, d.monitorsErr
}

func (d *fakeDaemon) RequestExit() {
	d.exits++
}

func testServer(d Daemon) *Server {
	return &Server{
		daemon:    d,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		startTime: time.Now().Add(-5 * time.Second),
	}
}

func TestHandleCommand_Reload(t *testing.T) {
	d := &fakeDaemon{}
	s := testServer(d)

	resp := s.handleCommand(&Request{Command: CommandReload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %+v", resp)
	}
	if d.reloads != 1 {
		t.Fatalf("expected one reload, got %d", d.reloads)
	}
}

func TestHandleCommand_ReloadFailureKeepsError(t *testing.T) {
	d := &fakeDaemon{reloadErr: errors.New("bad yaml")}
	s := testServer(d)

	resp := s.handleCommand(&Request{Command: CommandReload})
	if resp.Status != "ERROR" {
		t.Fatalf("expected ERROR, got %+v", resp)
	}
	if !strings.Contains(resp.Error, "bad yaml") {
		t.Fatalf("expected error message to carry the cause, got %q", resp.Error)
	}
}

func TestHandleCommand_StatusAddsUptimeAndRunning(t *testing.T) {
	s := testServer(&fakeDaemon{})

	resp := s.handleCommand(&Request{Command: CommandGetStatus})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %+v", resp)
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if !status.DaemonRunning {
		t.Fatalf("expected daemon_running true")
	}
	if status.UptimeSeconds < 5 {
		t.Fatalf("expected uptime >= 5s, got %d", status.UptimeSeconds)
	}
	if status.BorderCount != 3 || status.VisibleCount != 2 || status.Backend != "v2" || status.FPS != 60 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestHandleCommand_Monitors(t *testing.T) {
	d := &fakeDaemon{monitors: []MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 2560, Height: 1440},
	}}
	s := testServer(d)

	resp := s.handleCommand(&Request{Command: CommandGetMonitors})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %+v", resp)
	}

	var data MonitorsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal monitors: %v", err)
	}
	if len(data.Monitors) != 1 || data.Monitors[0].Name != "DP-1" {
		t.Fatalf("unexpected monitors: %+v", data)
	}
}

func TestHandleCommand_MonitorsError(t *testing.T) {
	d := &fakeDaemon{monitorsErr: errors.New("no display")}
	s := testServer(d)

	resp := s.handleCommand(&Request{Command: CommandGetMonitors})
	if resp.Status != "ERROR" {
		t.Fatalf("expected ERROR, got %+v", resp)
	}
}

func TestHandleCommand_Exit(t *testing.T) {
	d := &fakeDaemon{}
	s := testServer(d)

	resp := s.handleCommand(&Request{Command: CommandExit})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %+v", resp)
	}
	if d.exits != 1 {
		t.Fatalf("expected one exit request, got %d", d.exits)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	s := testServer(&fakeDaemon{})

	resp := s.handleCommand(&Request{Command: CommandType("DANCE")})
	if resp.Status != "ERROR" {
		t.Fatalf("expected ERROR for unknown command, got %+v", resp)
	}
	if !strings.Contains(resp.Error, "DANCE") {
		t.Fatalf("expected error to name the command, got %q", resp.Error)
	}
}

func TestParseRequest_RoundTrip(t *testing.T) {
	req := &Request{Command: CommandGetStatus}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	data = append(data, '\n')

	parsed, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Command != CommandGetStatus {
		t.Fatalf("expected %q, got %q", CommandGetStatus, parsed.Command)
	}
}

func TestParseRequest_InvalidJSON(t *testing.T) {
	if _, err := ParseRequest([]byte("not json\n")); err == nil {
		t.Fatalf("expected error for invalid request")
	}
}

func TestResponse_MarshalOmitsEmptyFields(t *testing.T) {
	resp, err := NewOKResponse(nil)
	if err != nil {
		t.Fatalf("response: %v", err)
	}
	data, err := resp.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "error") || strings.Contains(string(data), "data") {
		t.Fatalf("expected empty fields omitted, got %s", data)
	}
}
