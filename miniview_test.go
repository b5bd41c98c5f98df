package miniview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/miniview/internal/platform"
	"github.com/1broseidon/miniview/internal/platform/platformtest"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plant.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0644))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func show(t *testing.T, b *platformtest.Backend, builder ConfigBuilder) (*View, *platformtest.Window) {
	t.Helper()
	cfg := builder.PollInterval(time.Millisecond).Build()
	v, err := Show(cfg, WithBackend(b), WithLogger(quietLogger()))
	require.NoError(t, err)

	select {
	case w := <-b.Opened():
		return v, w
	case <-v.Done():
		return v, nil
	case <-time.After(waitFor):
		t.Fatal("window was never opened")
		return nil, nil
	}
}

func TestShowThenCloseSucceeds(t *testing.T) {
	b := platformtest.NewBackend()
	path := writePNG(t, 4, 3)

	v, w := show(t, b, FromPath(path).Fullscreen(true).LazyWindow(false))
	require.NotNil(t, w)

	assert.Equal(t, platform.WindowOptions{
		Title:      DefaultWindowTitle,
		Width:      4,
		Height:     3,
		Fullscreen: true,
		Resizable:  true,
	}, w.Options)

	require.NoError(t, v.Close())
	assert.Equal(t, StateClosed, v.State())
	assert.EqualValues(t, 1, w.CloseCalls())
	assert.EqualValues(t, 1, w.Uploads())
}

func TestCloseReturnsWorkerOpenError(t *testing.T) {
	b := platformtest.NewBackend()
	cause := errors.New("no display")
	b.OpenErr = cause

	v, err := Show(FromPath(writePNG(t, 2, 2)).Build(), WithBackend(b), WithLogger(quietLogger()))
	require.NoError(t, err, "window failures are reported on join, not by Show")

	err = v.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWindowCreate)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrJoinFailed)
	assert.NotErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, StateFailed, v.State())
}

func TestUploadFailureClosesWindow(t *testing.T) {
	b := platformtest.NewBackend()
	b.UploadErr = errors.New("pixmap")

	v, w := show(t, b, FromPath(writePNG(t, 2, 2)))
	require.NotNil(t, w)

	err := v.WaitForExit()
	assert.ErrorIs(t, err, ErrTextureMap)
	assert.True(t, w.Closed())
	assert.EqualValues(t, 0, w.Draws())
}

func TestWorkerPanicIsJoinFailure(t *testing.T) {
	b := platformtest.NewBackend()
	b.PanicOnUpload = "boom"

	v, _ := show(t, b, FromPath(writePNG(t, 2, 2)))

	err := v.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJoinFailed)
	assert.NotErrorIs(t, err, ErrTextureMap)
	assert.Equal(t, StateFailed, v.State())
}

func TestLazyWindowObservesCloseAfterNextEvent(t *testing.T) {
	b := platformtest.NewBackend()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)).LazyWindow(true))
	require.NotNil(t, w)

	// Let the worker finish one iteration and park in NextEvent.
	w.Send(platform.Expose{})
	require.Eventually(t, func() bool { return w.Draws() == 1 }, waitFor, tick)
	time.Sleep(20 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- v.Close() }()

	assert.Never(t, func() bool { return len(closed) > 0 }, 50*time.Millisecond, tick,
		"a lazy window must not notice Close before a native event arrives")

	w.Send(platform.Expose{})

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("close was not observed after a native event")
	}
	assert.Equal(t, StateClosed, v.State())
}

func TestNonLazyWindowObservesCloseWithoutEvents(t *testing.T) {
	b := platformtest.NewBackend()
	v, _ := show(t, b, FromPath(writePNG(t, 2, 2)).LazyWindow(false))

	start := time.Now()
	require.NoError(t, v.Close())
	assert.Less(t, time.Since(start), waitFor)
}

func TestDroppedViewKeepsDrawing(t *testing.T) {
	b := platformtest.NewBackend()
	_, w := show(t, b, FromPath(writePNG(t, 2, 2)))
	require.NotNil(t, w)

	var stop atomic.Bool
	go func() {
		for !stop.Load() {
			w.Send(platform.Expose{})
			time.Sleep(time.Millisecond)
		}
	}()

	assert.Eventually(t, func() bool { return w.Draws() >= 3 }, waitFor, tick)
	before := w.Draws()
	assert.Eventually(t, func() bool { return w.Draws() > before }, waitFor, tick,
		"worker must keep drawing after the view was dropped")
	assert.False(t, w.Closed())

	stop.Store(true)
	w.Send(platform.CloseRequested{})
	assert.Eventually(t, w.Closed, waitFor, tick)
}

func TestEscapeKey(t *testing.T) {
	escape := platform.KeyPress{Code: 9, Label: platform.KeyEscape}

	t.Run("closes when enabled", func(t *testing.T) {
		b := platformtest.NewBackend()
		v, w := show(t, b, FromPath(writePNG(t, 2, 2)))
		w.Send(escape)

		require.NoError(t, v.WaitForExit())
		assert.Equal(t, StateClosed, v.State())
		assert.True(t, w.Closed())
	})

	t.Run("ignored when disabled", func(t *testing.T) {
		b := platformtest.NewBackend()
		v, w := show(t, b, FromPath(writePNG(t, 2, 2)).ExitOnEscape(false))
		w.Send(escape)
		w.Send(platform.Expose{})

		// The expose is handled after the escape key, so the escape key
		// has been seen once the frame is drawn.
		require.Eventually(t, func() bool { return w.Draws() == 1 }, waitFor, tick)
		assert.Equal(t, StateOpen, v.State())
		assert.False(t, w.Closed())

		require.NoError(t, v.Close())
	})
}

func TestNativeCloseRequestEndsWait(t *testing.T) {
	for _, ev := range []platform.Event{platform.CloseRequested{}, platform.Destroyed{}} {
		b := platformtest.NewBackend()
		v, w := show(t, b, FromPath(writePNG(t, 2, 2)))
		w.Send(ev)
		require.NoError(t, v.WaitForExit(), "%T", ev)
	}
}

func TestLazyWindowLostConnectionCloses(t *testing.T) {
	b := platformtest.NewBackend()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)).LazyWindow(true))
	w.Disconnect()
	require.NoError(t, v.WaitForExit())
}

func TestPollingWindowLostConnectionCloses(t *testing.T) {
	b := platformtest.NewBackend()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)).LazyWindow(false))
	require.NotNil(t, w)
	w.Disconnect()

	exited := make(chan error, 1)
	go func() { exited <- v.WaitForExit() }()
	select {
	case err := <-exited:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatalf("worker still running after the connection was lost; state=%s", v.State())
	}
	assert.Equal(t, StateClosed, v.State())
	assert.True(t, w.Closed())
}

func TestCloseConditionEndsWaitWithoutCommand(t *testing.T) {
	b := platformtest.NewBackend()
	start := time.Now()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)).CloseWhen(CloseAfter(30*time.Millisecond)))

	require.NoError(t, v.WaitForExit())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, w.Closed())
	assert.Equal(t, StateClosed, v.State())
}

func TestCloseAfterWorkerExitedReportsSendFailure(t *testing.T) {
	b := platformtest.NewBackend()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)))
	w.Send(platform.CloseRequested{})
	<-v.Done()

	assert.ErrorIs(t, v.Close(), ErrSendFailed)
}

func TestViewIsConsumedOnce(t *testing.T) {
	b := platformtest.NewBackend()
	v, _ := show(t, b, FromPath(writePNG(t, 2, 2)))

	require.NoError(t, v.Close())
	assert.ErrorIs(t, v.Close(), ErrViewConsumed)
	assert.ErrorIs(t, v.WaitForExit(), ErrViewConsumed)
}

func TestRedrawEventsDrawExactlyOnce(t *testing.T) {
	b := platformtest.NewBackend()
	v, w := show(t, b, FromPath(writePNG(t, 2, 2)))

	w.Send(platform.Expose{})
	w.Send(platform.Unhandled{})
	w.Send(platform.Resized{Width: 10, Height: 10})
	w.Send(platform.KeyPress{Label: "a"})

	require.Eventually(t, func() bool { return w.Draws() == 2 }, waitFor, tick)
	require.NoError(t, v.Close())
	assert.EqualValues(t, 2, v.Info().Frames)
}

func TestShowResolveFailureStartsNoWorker(t *testing.T) {
	b := platformtest.NewBackend()

	_, err := Show(FromPath(filepath.Join(t.TempDir(), "missing.png")).Build(), WithBackend(b))
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Empty(t, b.Windows())
}

func TestShowFromReader(t *testing.T) {
	b := platformtest.NewBackend()
	src := FromReader(bytes.NewReader(encodePNG(t, 5, 7)))

	v, w := show(t, b, NewConfigBuilder(src).WindowTitle("capture-me"))
	require.NotNil(t, w)
	assert.Equal(t, "capture-me", w.Options.Title)

	info := v.Info()
	assert.Equal(t, 5, info.Width)
	assert.Equal(t, 7, info.Height)
	assert.Equal(t, "capture-me", info.Title)
	require.NoError(t, v.Close())
}

func TestRun(t *testing.T) {
	b := platformtest.NewBackend()
	cfg := FromPath(writePNG(t, 2, 2)).CloseWhen(CloseAfter(5 * time.Millisecond)).Build()

	require.NoError(t, Run(cfg, WithBackend(b), WithLogger(quietLogger())))
}
