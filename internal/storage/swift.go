package storage

import (
	"context"
	"io"

	"github.com/ncw/swift/v2"
	"github.com/pkg/errors"
)

type swft struct {
	conn *swift.Connection
}

// NewSwift returns a new OpenStack Swift backend using an authenticated connection.
func NewSwift(ctx context.Context, conn *swift.Connection) (Backend, error) {
	if err := conn.Authenticate(ctx); err != nil {
		return nil, errors.Wrap(err, "could not authenticate to swift")
	}

	return &swft{
		conn: conn,
	}, nil
}

func (b *swft) Name() string {
	return "swift"
}

func (b *swft) Reader(ctx context.Context, container, object string) (io.ReadCloser, error) {
	f, _, err := b.conn.ObjectOpen(ctx, container, object, true, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open object %s/%s", container, object)
	}
	return f, nil
}

func (b *swft) Writer(ctx context.Context, container, object string) (io.WriteCloser, error) {
	if err := b.conn.ContainerCreate(ctx, container, nil); err != nil {
		return nil, errors.Wrapf(err, "could not create container %s", container)
	}

	f, err := b.conn.ObjectCreate(ctx, container, object, true, "", "", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create object %s/%s", container, object)
	}
	return f, nil
}

func (b *swft) FilenamesFrom(ctx context.Context, container string) ([]string, error) {
	names, err := b.conn.ObjectNamesAll(ctx, container, nil)
	return names, errors.Wrapf(err, "could not list container %s", container)
}
