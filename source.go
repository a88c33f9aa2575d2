package vocoder

import (
	"fmt"
	"io"
	"time"

	"pipelined.dev/vocoder/signal"
)

// Trim skips the start of the source and limits its duration. Zero
// duration means the source is read till the end.
func Trim(fn SourceAllocatorFunc, start, duration time.Duration) SourceAllocatorFunc {
	if start <= 0 && duration <= 0 {
		return fn
	}
	return func(bufferSize int) (Source, error) {
		source, err := fn(bufferSize)
		if err != nil {
			return Source{}, err
		}
		skip := signal.SamplesOf(source.SampleRate, max(start, 0))
		limit := -1
		if duration > 0 {
			limit = signal.SamplesOf(source.SampleRate, duration)
		}
		if source.Known() {
			source.Length = max(source.Length-skip, 0)
			if limit >= 0 {
				source.Length = min(source.Length, limit)
			}
		}

		read := source.SourceFunc
		done := false
		source.SourceFunc = func(out signal.Float64) (int, error) {
			if done {
				return 0, io.EOF
			}
			for {
				n, err := read(out)
				if skip > 0 {
					if n <= skip {
						skip -= n
						if err != nil {
							return 0, err
						}
						continue
					}
					for c := range out {
						copy(out[c], out[c][skip:n])
					}
					n -= skip
					skip = 0
				}
				if limit >= 0 {
					if n >= limit {
						n, err, done = limit, io.EOF, true
					}
					limit -= n
				}
				return n, err
			}
		}
		return source, nil
	}
}

// RotateChannels moves every channel of the source one position right,
// the last channel becomes the first.
func RotateChannels(fn SourceAllocatorFunc) SourceAllocatorFunc {
	return func(bufferSize int) (Source, error) {
		source, err := fn(bufferSize)
		if err != nil {
			return Source{}, err
		}
		if source.Channels < 1 {
			return Source{}, fmt.Errorf("rotate channels: got %d channels", source.Channels)
		}
		read := source.SourceFunc
		last := make([]float64, bufferSize)
		source.SourceFunc = func(out signal.Float64) (int, error) {
			n, err := read(out)
			if n == 0 || len(out) < 2 {
				return n, err
			}
			tail := len(out) - 1
			copy(last, out[tail][:n])
			for c := tail; c > 0; c-- {
				copy(out[c][:n], out[c-1][:n])
			}
			copy(out[0], last[:n])
			return n, err
		}
		return source, nil
	}
}
