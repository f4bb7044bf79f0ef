// Package testutil holds typed assertion helpers shared by the phonekit test
// suites. They are thin wrappers over testify that keep call sites short and
// let the compiler check that both sides of a comparison have the same type.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DiscardLogger returns a *slog.Logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Equal fails the test if want != got.
func Equal[T comparable](t testing.TB, want, got T) {
	t.Helper()
	assert.Equal(t, want, got)
}

// NoError stops the test if err is not nil.
func NoError(t testing.TB, err error) {
	t.Helper()
	require.NoError(t, err)
}

// ErrorIs stops the test unless errors.Is(err, target).
func ErrorIs(t testing.TB, err, target error) {
	t.Helper()
	require.ErrorIs(t, err, target)
}

// ErrorContains stops the test if err is nil or its message lacks substr.
func ErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	require.ErrorContains(t, err, substr)
}

// True fails the test if condition is false. msgAndArgs is a format string
// followed by its arguments.
func True(t testing.TB, condition bool, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, condition, msgAndArgs...)
}

// False fails the test if condition is true.
func False(t testing.TB, condition bool, msgAndArgs ...any) {
	t.Helper()
	assert.False(t, condition, msgAndArgs...)
}

// Nil fails the test if val is not nil. Typed nil pointers count as nil.
func Nil(t testing.TB, val any) {
	t.Helper()
	assert.Nil(t, val)
}

// NotNil stops the test if val is nil.
func NotNil(t testing.TB, val any) {
	t.Helper()
	require.NotNil(t, val)
}

// SliceLen fails the test if slice does not hold wantLen elements.
func SliceLen[T any](t testing.TB, slice []T, wantLen int) {
	t.Helper()
	assert.Len(t, slice, wantLen)
}

// StatusCode stops the test on an unexpected HTTP status, since the body
// will not have the shape later assertions expect.
func StatusCode(t testing.TB, want, got int) {
	t.Helper()
	require.Equal(t, want, got, "HTTP status")
}

// Contains fails the test if s does not contain substr.
func Contains(t testing.TB, s, substr string) {
	t.Helper()
	assert.Contains(t, s, substr)
}
