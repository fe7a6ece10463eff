package storefront

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingCloser struct {
	name   string
	closed *[]string
	err    error
}

func (c recordingCloser) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestApp_CloseReleasesResourcesInReverseOrder(t *testing.T) {
	var closed []string
	app := &App{logger: newNoopLogger()}
	for _, name := range []string{"database", "redis client", "rabbitmq connection", "rabbitmq channel"} {
		app.track(name, recordingCloser{name: name, closed: &closed})
	}

	app.close()

	assert.Equal(t, []string{"rabbitmq channel", "rabbitmq connection", "redis client", "database"}, closed)
	assert.Empty(t, app.resources)
}

func TestApp_CloseContinuesAfterError(t *testing.T) {
	var closed []string
	app := &App{logger: newNoopLogger()}
	app.track("database", recordingCloser{name: "database", closed: &closed})
	app.track("rabbitmq connection", recordingCloser{name: "rabbitmq connection", closed: &closed, err: errors.New("broken pipe")})

	app.close()
	app.close()

	assert.Equal(t, []string{"rabbitmq connection", "database"}, closed)
}
