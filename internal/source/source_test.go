package source

import (
	"context"
	"testing"
	"time"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

func TestRandomLogsGeneratesHelloWorld(t *testing.T) {
	src, err := BuildRandomLogs(map[string]any{"interval": int64(5)})
	if err != nil {
		t.Fatalf("BuildRandomLogs: %v", err)
	}
	prepared, err := src.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ch := make(chan event.Event, 1)
	c := collector.New(nil)
	c.AddOutput(component.DefaultOutput, ch)

	go prepared.Execute(c)

	select {
	case e := <-ch:
		l, ok := e.Log()
		if !ok || l.Message != "Hello World!" {
			t.Errorf("unexpected event: %+v", e)
		}
		hostname, _ := l.Attributes.Get("hostname")
		s, _ := hostname.Text()
		if s != "fake-server" {
			t.Errorf("hostname = %q, want fake-server", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a generated log")
	}
}

func TestBuildUnknownSourceType(t *testing.T) {
	if _, err := Build("nonexistent", map[string]any{}, nil); err == nil {
		t.Fatal("expected an error for an unknown source type")
	}
}
