package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/mock"
	"pipelined.dev/vocoder/signal"
)

func TestSource(t *testing.T) {
	tests := []struct {
		source   *mock.Source
		expected signal.Float64
		length   int
		messages int
	}{
		{
			source:   &mock.Source{Value: 0.5, Limit: 5, Channels: 2},
			expected: signal.Float64{{0.5, 0.5, 0.5, 0.5, 0.5}, {0.5, 0.5, 0.5, 0.5, 0.5}},
			length:   5,
			messages: 2,
		},
		{
			source:   &mock.Source{Data: signal.Float64{{1, 2, 3, 4, 5, 6, 7}}, Unknown: true},
			expected: signal.Float64{{1, 2, 3, 4, 5, 6, 7}},
			length:   -1,
			messages: 3,
		},
	}
	for _, test := range tests {
		source, err := test.source.Source()(3)
		require.NoError(t, err)
		assert.Equal(t, 44100, source.SampleRate)
		assert.Equal(t, test.length, source.Length)
		require.NoError(t, source.StartFunc(context.Background()))

		var result signal.Float64
		buf := signal.EmptyFloat64(source.Channels, 3)
		for {
			n, err := source.SourceFunc(buf)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			result = result.Append(buf.Slice(0, n))
		}
		require.NoError(t, source.FlushFunc(context.Background()))
		assert.Equal(t, test.expected, result)
		assert.True(t, test.source.Started)
		assert.True(t, test.source.Flushed)
		messages, samples := test.source.Count()
		assert.Equal(t, test.messages, messages)
		assert.Equal(t, test.expected.Size(), samples)
	}
}

func TestSourceError(t *testing.T) {
	errTest := errors.New("test")
	source, err := (&mock.Source{Limit: 10, ErrorOnCall: errTest}).Source()(3)
	require.NoError(t, err)
	_, err = source.SourceFunc(signal.EmptyFloat64(1, 3))
	assert.ErrorIs(t, err, errTest)
}

func TestSink(t *testing.T) {
	m := mock.Sink{}
	props := vocoder.SignalProperties{SampleRate: 8000, Channels: 1, Length: 4}
	sink, err := m.Sink()(2, props)
	require.NoError(t, err)
	require.NoError(t, sink.SinkFunc(signal.Float64{{1, 2}}))
	require.NoError(t, sink.SinkFunc(signal.Float64{{3, 4}}))
	assert.Equal(t, signal.Float64{{1, 2, 3, 4}}, m.Buffer())
	assert.Equal(t, props, m.Properties())

	d := &mock.Sink{Discard: true}
	sink, err = d.Sink()(2, props)
	require.NoError(t, err)
	require.NoError(t, sink.SinkFunc(signal.Float64{{1, 2}}))
	assert.Nil(t, d.Buffer())
	_, samples := d.Count()
	assert.Equal(t, 2, samples)
}
