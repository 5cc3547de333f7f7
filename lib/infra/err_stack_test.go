package infra

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC + 1)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{initPC, "%d", "16"},
		{initPC, "%v", "err_stack_test.go:16"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		frameRes := fmt.Sprintf(tc.format, tc.Frame)
		require.Equal(t, tc.want, frameRes)
	}

	full := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xcoll/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go:16"))
}

func TestFrameMarshalText(t *testing.T) {
	_bytes, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(_bytes, []byte("github.com/benz9527/xcoll/lib/infra.init ")))
	require.True(t, bytes.HasSuffix(_bytes, []byte("err_stack_test.go:16")))

	_bytes, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, []byte("unknownFrame"), _bytes)
}

func TestFrameMarshalJSON(t *testing.T) {
	_bytes, err := json.Marshal(initPC)
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, json.Unmarshal(_bytes, &res))
	require.Equal(t, "github.com/benz9527/xcoll/lib/infra.init", res["func"])
	require.True(t, strings.HasSuffix(res["fileAndLine"], "err_stack_test.go:16"))

	_bytes, err = json.Marshal(Frame(0))
	require.NoError(t, err)
	require.Equal(t, []byte("{\"frame\":\"unknownFrame\"}"), _bytes)
}

func TestWrapErrorStack(t *testing.T) {
	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "nothing"))

	err := WrapErrorStackWithMessage(ErrNotFound, "[rbtree] remove")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, "[rbtree] remove: "+ErrNotFound.Error(), err.Error())
	require.NotEmpty(t, err.Frames())
	names := make([]string, 0, len(err.Frames()))
	for _, frame := range err.Frames() {
		names = append(names, fmt.Sprintf("%n", frame))
	}
	require.Contains(t, names, "TestWrapErrorStack")

	var es ErrorStack
	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, errors.As(wrapped, &es))
	require.Same(t, err, WrapErrorStack(wrapped))

	verbose := fmt.Sprintf("%+v", err)
	require.True(t, strings.HasPrefix(verbose, err.Error()+"\n"))
	require.Contains(t, verbose, "err_stack_test.go")
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := NewErrorStack("boom")
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, err.MarshalLogObject(enc))
	require.Equal(t, "boom", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
}
