package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocate_InitialCounts(t *testing.T) {
	p, h, r := Allocate([]byte("hello"), nil)

	require.Equal(t, p.ID(), h.ID())
	require.Equal(t, p.ID(), r.ID())
	require.Equal(t, int64(2), p.f.handleCount.Load())
	require.Equal(t, int64(1), p.f.refCount.Load())

	g := r.Read()
	require.Equal(t, []byte("hello"), g.Bytes())
	g.Release()
}

func TestRef_ReadWrite(t *testing.T) {
	_, _, r := Allocate([]byte("abc"), nil)

	wg := r.Write()
	copy(wg.Bytes(), "xyz")
	wg.Release()

	rg := r.Read()
	require.Equal(t, []byte("xyz"), rg.Bytes())
	rg.Release()
}

func TestRef_CloneKeepsFrameAlive(t *testing.T) {
	p, _, r := Allocate([]byte("abc"), nil)

	clone := r.Clone()
	r.Release()

	// One ref still outstanding (clone), so invalidation must fail.
	_, err := p.TryInvalidate()
	require.ErrorIs(t, err, ErrStillPinned)

	clone.Release()

	buf, err := p.TryInvalidate()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), buf)
}

func TestPage_TryInvalidate_AlreadyInvalidated(t *testing.T) {
	p, _, r := Allocate([]byte("abc"), nil)
	r.Release()

	_, err := p.TryInvalidate()
	require.NoError(t, err)

	_, err = p.TryInvalidate()
	require.ErrorIs(t, err, ErrAlreadyInvalidated)
}

func TestHandle_PinAfterInvalidate(t *testing.T) {
	p, h, r := Allocate([]byte("abc"), nil)
	r.Release()

	_, err := p.TryInvalidate()
	require.NoError(t, err)

	_, err = h.Pin()
	require.ErrorIs(t, err, ErrPageInvalidated)
}

func TestHandle_PinBeforeInvalidate(t *testing.T) {
	_, h, r := Allocate([]byte("abc"), nil)

	r2, err := h.Pin()
	require.NoError(t, err)

	g := r2.Read()
	require.Equal(t, []byte("abc"), g.Bytes())
	g.Release()

	r.Release()
	r2.Release()
}

func TestPage_Release_PanicsIfRefOutstanding(t *testing.T) {
	p, h, r := Allocate([]byte("abc"), nil)
	_ = r

	p.Release()

	require.Panics(t, func() {
		h.Release()
	})
}
