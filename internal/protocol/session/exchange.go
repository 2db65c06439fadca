package session

import (
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// Deadline is the earlier of now+timeout and ctx's own deadline.
func Deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// Bind applies the exchange deadline to conn and expires it early if ctx is
// cancelled. The returned stop func must be called once the exchange ends.
func Bind(ctx context.Context, conn net.Conn, timeout time.Duration) (stop func() bool, err error) {
	return BindDeadline(ctx, conn, Deadline(ctx, timeout))
}

// BindDeadline is Bind with a deadline computed by the caller, so one bound
// can cover work done before conn existed.
func BindDeadline(ctx context.Context, conn net.Conn, deadline time.Time) (stop func() bool, err error) {
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop = context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	return stop, nil
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
