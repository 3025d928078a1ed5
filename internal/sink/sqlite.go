package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

const sqliteMigration = `
create table if not exists event_logs (
	timestamp integer not null,
	attributes text not null default '{}',
	message text not null
);
create table if not exists event_metrics (
	timestamp integer not null,
	namespace text not null,
	name text not null,
	tags text not null default '{}',
	value text not null
);
`

// Sqlite persists every received event into a local SQLite database,
// migrating its two tables (event_logs, event_metrics) on start-up.
type Sqlite struct {
	dsn    string
	logger *slog.Logger
}

// BuildSqlite decodes {url?}, defaulting to an in-memory database.
func BuildSqlite(raw map[string]any, logger *slog.Logger) (*Sqlite, error) {
	url, err := stringField(raw, "url", "")
	if err != nil {
		return nil, err
	}
	dsn := url
	if dsn == "" {
		dsn = ":memory:"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sqlite{dsn: dsn, logger: logger}, nil
}

func (s *Sqlite) Prepare(context.Context) (topology.PreparedSink, error) {
	db, err := sql.Open("sqlite3", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: invalid database connection url: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: invalid database connection url: %w", err)
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: unable to execute migration: %w", err)
	}
	return &preparedSqlite{db: db, logger: s.logger}, nil
}

type preparedSqlite struct {
	db     *sql.DB
	logger *slog.Logger
}

func (p *preparedSqlite) persistLog(l event.Log) error {
	attrs, err := l.Attributes.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = p.db.Exec(
		"insert into event_logs (timestamp, attributes, message) values (?,?,?)",
		time.Now().Unix(), string(attrs), l.Message,
	)
	return err
}

func (p *preparedSqlite) persistMetric(m event.Metric) error {
	tags, err := m.Tags.MarshalJSON()
	if err != nil {
		return err
	}
	value, err := json.Marshal(m.Value)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(
		"insert into event_metrics (timestamp, namespace, name, tags, value) values (?,?,?,?,?)",
		time.Now().Unix(), m.Namespace, m.Name, string(tags), string(value),
	)
	return err
}

func (p *preparedSqlite) persist(e event.Event) error {
	if l, ok := e.Log(); ok {
		return p.persistLog(*l)
	}
	if m, ok := e.Metric(); ok {
		return p.persistMetric(*m)
	}
	return nil
}

func (p *preparedSqlite) Execute(receiver <-chan event.Event) error {
	defer p.db.Close()
	p.logger.Info("starting")
	for e := range receiver {
		if err := p.persist(e); err != nil {
			p.logger.Error("unable to persist received event", "error", err)
		}
	}
	p.logger.Info("stopping")
	return nil
}
