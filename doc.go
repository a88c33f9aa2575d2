/*
Package vocoder time-stretches, pitch-shifts and transforms signal in the
frequency domain with a phase vocoder.

Concept

The signal goes through four stages:

    Source - reads the signal and cuts it into overlapping windows;
    Analyzer - transforms every window into a spectral frame;
    Resynthesizer - applies the kernel to the frame and overlap-adds
    it back into the signal;
    Sink - writes the signal.

Every stage runs in its own goroutine. Stages are connected with bounded
links, so a slow sink holds the source back. Frames are processed in
order and each frame is owned by one stage at a time.

Stretch factor and pitch multiple define the analysis and synthesis hops.
Synthesis/analysis ratio is factor*p for positive pitch multiple and
factor/|p| for negative one. The overlap-added signal is then resampled
by p, so its duration changes by factor and its pitch by p or 1/|p|.

Components

Sources and sinks are instantiated with allocator functions:

    SourceAllocatorFunc
    SinkAllocatorFunc

For example, wav.Source reads the signal from wav file and portaudio.Sink
plays it back. Component structures consist of run closure, start and
flush hooks. Flush hook is called once the pipe is done or interrupted,
if the component was started.

Kernels

A kernel is a user function that transforms the bins of every frame. It
is compiled from Go or C source, loaded into the process and rebuilt
every time its source changes:

    h, err := kernel.NewHost("swoop.go", kernel.WithLogger(l))
    p, err := vocoder.New(cfg, source, sink, vocoder.WithKernel(h))

New kernel is installed between two frames, so every frame is transformed
by exactly one kernel. If the source fails to build, the previous kernel
stays active.

Execution

    r := p.Run(ctx)
    err := r.Wait()

Run will asynchronously run all stages until either any of the following
things happen: the source is done; the context is done, in which case
the buffered signal is drained; the runner is aborted; an error in any of
the stages occurred.
*/
package vocoder
