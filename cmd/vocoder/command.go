package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/kernel"
	"pipelined.dev/vocoder/log"
	"pipelined.dev/vocoder/metric"
	"pipelined.dev/vocoder/mp3"
	"pipelined.dev/vocoder/portaudio"
	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/wav"
)

// options are the resolved command line parameters.
type options struct {
	vocoder.Config
	input          string
	output         string
	kernel         string
	rotate         bool
	start          time.Duration
	duration       time.Duration
	sampleRate     int
	channels       int
	bitDepth       int
	bitRate        int
	quality        int
	metricsAddress string
	debug          bool
}

func newCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocoder",
		Short: "Phase vocoder with hot-swappable frequency kernels",
		Long: "Stretch, pitch-shift and transform audio in the frequency domain.\n" +
			"Input and output are wav or mp3 files, \"-\" reads wav from stdin.\n" +
			"Without input the default capture device is used, without output\n" +
			"the signal is played back. The kernel source is rebuilt on every save.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			return process(cmd.Context(), opts)
		},
	}
	setupFlags(cmd.Flags())
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return configure(v, cmd.Flags())
	}
	return cmd
}

// configure binds flags, environment and config file to viper. Flags
// take precedence over environment, environment over config file.
func configure(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	v.SetEnvPrefix("VOCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config: %w", err)
		}
	}
	return nil
}

func setupFlags(flags *pflag.FlagSet) {
	defaults := vocoder.DefaultConfig()
	flags.StringP("input", "i", "", "input wav or mp3 file, \"-\" for wav on stdin, capture device if empty")
	flags.StringP("output", "o", "", "output wav or mp3 file, playback device if empty")
	flags.StringP("freq-kernel", "k", "", "frequency kernel source, .go or .c")
	flags.Float64P("factor", "f", defaults.Factor, "stretch factor, 2 is twice slower")
	flags.IntP("pitch-multiple", "p", defaults.PitchMultiple, "pitch multiple, negative shifts along subharmonic series")
	flags.IntP("window-len", "w", defaults.WindowLen, "analysis window length in samples")
	flags.StringP("buffer", "b", "1", "maximum buffered duration between stages, [[hh:]mm:]ss[.ss]")
	flags.Float64P("amplitude", "a", defaults.Amplitude, "output amplitude multiplier")
	flags.StringP("fade", "x", "1", "fade-in and fade-out duration, [[hh:]mm:]ss[.ss]")
	flags.Bool("random-phase", false, "randomize phase of every bin")
	flags.Bool("rotate-channels", false, "rotate input channels by one")
	flags.StringP("start", "s", "0", "skip input start, [[hh:]mm:]ss[.ss]")
	flags.StringP("duration", "d", "0", "input duration, read till the end if zero, [[hh:]mm:]ss[.ss]")
	flags.Int("sample-rate", 44100, "sample rate of capture device")
	flags.Int("channels", 2, "number of channels of capture device")
	flags.Int("bit-depth", int(signal.BitDepth16), "bit depth of wav output")
	flags.Int("bit-rate", 192, "bit rate of mp3 output")
	flags.Int("quality", 2, "quality of mp3 output, 0 is the best")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address")
	flags.String("config", "", "config file")
	flags.Bool("debug", false, "enable debug output")
}

func loadOptions(v *viper.Viper) (options, error) {
	opts := options{
		Config: vocoder.Config{
			Factor:        v.GetFloat64("factor"),
			PitchMultiple: v.GetInt("pitch-multiple"),
			WindowLen:     v.GetInt("window-len"),
			Amplitude:     v.GetFloat64("amplitude"),
			RandomPhase:   v.GetBool("random-phase"),
		},
		input:          v.GetString("input"),
		output:         v.GetString("output"),
		kernel:         v.GetString("freq-kernel"),
		rotate:         v.GetBool("rotate-channels"),
		sampleRate:     v.GetInt("sample-rate"),
		channels:       v.GetInt("channels"),
		bitDepth:       v.GetInt("bit-depth"),
		bitRate:        v.GetInt("bit-rate"),
		quality:        v.GetInt("quality"),
		metricsAddress: v.GetString("metrics-addr"),
		debug:          v.GetBool("debug"),
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"buffer", &opts.Buffer},
		{"fade", &opts.Fade},
		{"start", &opts.start},
		{"duration", &opts.duration},
	}
	for _, d := range durations {
		var err error
		if *d.dst, err = parseDuration(v.GetString(d.key)); err != nil {
			return options{}, &vocoder.ConfigurationError{Field: d.key, Reason: err.Error()}
		}
	}
	return opts, opts.Validate()
}

func (opts options) source() (vocoder.SourceAllocatorFunc, error) {
	var source vocoder.SourceAllocatorFunc
	switch ext := strings.ToLower(filepath.Ext(opts.input)); {
	case opts.input == "":
		source = portaudio.Capture(opts.sampleRate, opts.channels)
	case opts.input == wav.Stdin || ext == ".wav":
		source = wav.Source(opts.input)
	case ext == ".mp3":
		source = mp3.Source(opts.input)
	default:
		return nil, &vocoder.SourceFormatError{Path: opts.input, Err: errors.New("unknown extension")}
	}
	source = vocoder.Trim(source, opts.start, opts.duration)
	if opts.rotate {
		source = vocoder.RotateChannels(source)
	}
	return source, nil
}

func (opts options) sink() (vocoder.SinkAllocatorFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(opts.output)); {
	case opts.output == "":
		return portaudio.Playback(), nil
	case ext == ".wav":
		return wav.Sink(opts.output, signal.BitDepth(opts.bitDepth)), nil
	case ext == ".mp3":
		return mp3.Sink(opts.output, opts.bitRate, opts.quality), nil
	}
	return nil, &vocoder.ConfigurationError{Field: "output", Reason: fmt.Sprintf("unknown extension of %q", opts.output)}
}

func process(ctx context.Context, opts options) error {
	logger := log.GetLogger()
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	source, err := opts.source()
	if err != nil {
		return err
	}
	sink, err := opts.sink()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	if err != nil {
		return err
	}
	if opts.metricsAddress != "" {
		srv := serveMetrics(opts.metricsAddress, reg, logger)
		defer srv.Shutdown(context.Background())
	}

	pipeOptions := []vocoder.Option{
		vocoder.WithLogger(logger),
		vocoder.WithMetric(m),
	}
	if opts.kernel != "" {
		h, err := kernel.NewHost(opts.kernel,
			kernel.WithLogger(logger),
			kernel.WithMetric(m),
		)
		if err != nil {
			return err
		}
		pipeOptions = append(pipeOptions, vocoder.WithKernel(h))
	}
	p, err := vocoder.New(opts.Config, source, sink, pipeOptions...)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"input":  opts.input,
		"output": opts.output,
		"kernel": opts.kernel,
	}).Info("processing")

	interrupts := make(chan os.Signal, 2)
	ossignal.Notify(interrupts, os.Interrupt)
	defer ossignal.Stop(interrupts)

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	r := p.Run(ctx)
	interrupted := false
	for done := false; !done; {
		select {
		case <-r.Done():
			done = true
		case <-interrupts:
			if interrupted {
				logger.Info("aborting")
				r.Abort()
				continue
			}
			interrupted = true
			logger.Info("stopping, interrupt again to abort")
			stop()
		}
	}
	if err := r.Wait(); err != nil {
		return err
	}
	if interrupted {
		return errInterrupted
	}
	logger.Info("done")
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server failed")
		}
	}()
	return srv
}
