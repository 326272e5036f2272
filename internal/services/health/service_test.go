package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want string
	}{
		{name: "no database", db: nil, want: DatabaseUnconfigured},
		{name: "reachable", db: pingFunc(func(context.Context) error { return nil }), want: DatabaseConnected},
		{name: "down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), want: DatabaseUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.db).Status(context.Background())
			if !got.OK || got.Database != tt.want {
				t.Fatalf("Status() = %+v, want database %q", got, tt.want)
			}
		})
	}
}
