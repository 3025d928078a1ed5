package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// File appends every received event as a single JSON line to a file,
// creating it if necessary.
type File struct {
	path string
}

// BuildFile decodes the required {path} field.
func BuildFile(raw map[string]any) (*File, error) {
	path, err := stringField(raw, "path", "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("file: missing required field %q", "path")
	}
	return &File{path: path}, nil
}

func (f *File) Prepare(context.Context) (topology.PreparedSink, error) {
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file: unable to open %s: %w", f.path, err)
	}
	return &preparedFile{file: fh}, nil
}

type preparedFile struct {
	file *os.File
}

func (p *preparedFile) Execute(receiver <-chan event.Event) error {
	defer p.file.Close()
	for e := range receiver {
		line, err := json.Marshal(e)
		if err != nil {
			continue
		}
		line = append(line, '\n')
		if _, err := p.file.Write(line); err != nil {
			return err
		}
	}
	return nil
}
