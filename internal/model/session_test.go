package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAutoencoder struct{ closed bool }

func (s *stubAutoencoder) Reconstruct(_ context.Context, w [][][]float64) ([][][]float64, error) {
	return w, nil
}
func (s *stubAutoencoder) Close() error { s.closed = true; return nil }

type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, _ []float32) ([]float32, error) {
	return []float32{1}, nil
}

type stubLoader struct {
	ae  Autoencoder
	clf ImageClassifier
	err error
}

func (l stubLoader) Load(context.Context) (Autoencoder, ImageClassifier, error) {
	return l.ae, l.clf, l.err
}

func TestSessionLifecycle(t *testing.T) {
	session := NewSession()
	assert.Equal(t, StateUnloaded, session.State())

	_, err := session.Autoencoder()
	var notReady *ModelNotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, StateUnloaded, notReady.State)

	ae := &stubAutoencoder{}
	require.NoError(t, session.Load(context.Background(), stubLoader{ae: ae, clf: stubClassifier{}}))
	assert.Equal(t, StateReady, session.State())

	got, err := session.Autoencoder()
	require.NoError(t, err)
	assert.Same(t, Autoencoder(ae), got)
	_, err = session.Classifier()
	require.NoError(t, err)
}

func TestSessionLoadFailure(t *testing.T) {
	session := NewSession()
	loadErr := errors.New("weights missing")
	err := session.Load(context.Background(), stubLoader{err: loadErr})
	require.Error(t, err)
	assert.Equal(t, StateFailed, session.State())
	assert.ErrorIs(t, session.LoadError(), loadErr)

	_, err = session.Autoencoder()
	var notReady *ModelNotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, StateFailed, notReady.State)

	// A failed session may retry the load.
	require.NoError(t, session.Load(context.Background(), stubLoader{ae: &stubAutoencoder{}, clf: stubClassifier{}}))
	assert.Equal(t, StateReady, session.State())
}

func TestSessionLoadWhileReadyIsNoop(t *testing.T) {
	session := NewSession()
	ae := &stubAutoencoder{}
	require.NoError(t, session.Load(context.Background(), stubLoader{ae: ae, clf: stubClassifier{}}))
	// Second load with a different backend must not replace the first.
	require.NoError(t, session.Load(context.Background(), stubLoader{ae: &stubAutoencoder{}, clf: stubClassifier{}}))
	got, err := session.Autoencoder()
	require.NoError(t, err)
	assert.Same(t, Autoencoder(ae), got)
}

func TestSessionDispose(t *testing.T) {
	session := NewSession()
	ae := &stubAutoencoder{}
	require.NoError(t, session.Load(context.Background(), stubLoader{ae: ae, clf: stubClassifier{}}))

	session.Dispose()
	assert.Equal(t, StateUnloaded, session.State())
	assert.True(t, ae.closed, "Dispose should close closable backends")
	_, err := session.Autoencoder()
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}
