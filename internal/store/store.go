package store

import (
	"context"
	"fmt"

	"github.com/amishk599/internradar/internal/model"
)

// Options selects and configures a backend.
type Options struct {
	Type     string // file, sqlite, redis, postgres, mongo, nop
	Path     string // file and sqlite
	URL      string // redis, postgres, mongo
	Database string // mongo
	Key      string // redis
}

// Open creates the backend named by opts.Type. Network backends verify
// connectivity before returning.
func Open(ctx context.Context, opts Options) (model.SeenBackend, error) {
	switch opts.Type {
	case "", "file":
		return NewFileBackend(opts.Path), nil
	case "sqlite":
		path := opts.Path
		if path == "" {
			path = "internradar.db"
		}
		return NewSQLiteBackend(path)
	case "redis":
		return NewRedisBackend(ctx, opts.URL, opts.Key)
	case "postgres":
		return NewPostgresBackend(ctx, opts.URL)
	case "mongo":
		return NewMongoBackend(ctx, opts.URL, opts.Database)
	case "nop":
		return NewNopBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}
