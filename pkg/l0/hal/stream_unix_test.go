//go:build unix

package hal

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreamPortStopsOnBlockingStream(t *testing.T) {
	fds := make([]int, 2)
	require.NoError(t, syscall.Pipe(fds))
	r := os.NewFile(uintptr(fds[0]), "rx")
	w := os.NewFile(uintptr(fds[1]), "tx")
	defer w.Close()

	p := NewStreamPort(r)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	_, err := w.Write([]byte("L"))
	require.NoError(t, err)
	require.Eventually(t, p.ByteAvailable, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked after cancel")
	}
}
